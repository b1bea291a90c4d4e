package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
)

type settingsService struct {
	BaseService
	repo     portsrepo.SettingsRepositoryFacade
	validate *validator.Validate
}

// NewSettingsService creates the settings store on top of a key-value repository.
func NewSettingsService(repo portsrepo.SettingsRepositoryFacade) portssvc.SettingsSvcFacade {
	return &settingsService{repo: repo, validate: newSettingsValidator()}
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

// LoadSettings never fails to return usable settings. Anonymous users and missing
// records get the page defaults with a nil error; decode and storage problems get
// the page defaults together with the error that caused the fallback.
func (s *settingsService) LoadSettings(ctx context.Context, userID, pageID string) (domain.PageSettings, error) {
	if userID == "" {
		return defaults.Resolve(pageID), nil
	}

	payload, err := s.repo.FindSettings(ctx, userID, pageID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return defaults.Resolve(pageID), nil
	}
	if err != nil {
		err = asStorageError(err)
		s.LogError(ctx, err, "Failed to load settings, serving defaults", slog.String("page_id", pageID))
		return defaults.Resolve(pageID), err
	}
	return s.decode(ctx, pageID, payload)
}

func (s *settingsService) LoadAllSettings(ctx context.Context, userID string) (map[string]domain.PageSettings, error) {
	out := make(map[string]domain.PageSettings)
	for _, page := range defaults.KnownPages() {
		out[page] = defaults.Resolve(page)
	}
	if userID == "" {
		return out, nil
	}

	stored, err := s.repo.ListSettings(ctx, userID)
	if err != nil {
		err = asStorageError(err)
		s.LogError(ctx, err, "Failed to list settings, serving defaults")
		return out, err
	}

	var errs []error
	for page, payload := range stored {
		settings, err := s.decode(ctx, page, payload)
		if err != nil {
			errs = append(errs, err)
		}
		out[page] = settings
	}
	return out, errors.Join(errs...)
}

// decode merges a stored payload over the page defaults. Fields absent from the
// payload keep their default value and unknown fields are ignored, so records
// written before a field existed load with that field's default.
func (s *settingsService) decode(ctx context.Context, pageID string, payload []byte) (domain.PageSettings, error) {
	merged := defaults.Resolve(pageID)
	if err := json.Unmarshal(payload, &merged); err != nil {
		s.LogWarn(ctx, "Corrupt settings record, serving defaults", slog.String("page_id", pageID), slog.String("error", err.Error()))
		return defaults.Resolve(pageID), fmt.Errorf("%w: page %s: %v", apperrors.ErrCorruptRecord, pageID, err)
	}
	merged.Normalize()
	return merged, nil
}

func (s *settingsService) SaveSettings(ctx context.Context, userID, pageID string, settings domain.PageSettings) error {
	if userID == "" {
		return apperrors.ErrPermissionDenied
	}
	if strings.TrimSpace(pageID) == "" {
		return fmt.Errorf("%w: page id is required", apperrors.ErrValidation)
	}

	record := settings.Clone()
	if err := s.ValidateSettings(&record); err != nil {
		return err
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.repo.UpsertSettings(ctx, userID, pageID, payload); err != nil {
		err = asStorageError(err)
		s.LogError(ctx, err, "Failed to save settings", slog.String("page_id", pageID))
		return err
	}
	s.LogInfo(ctx, "Settings saved", slog.String("page_id", pageID))
	return nil
}

// ValidateSettings normalizes settings in place and checks them.
func (s *settingsService) ValidateSettings(settings *domain.PageSettings) error {
	settings.Normalize()
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, describeValidation(err))
	}
	if columnNumber(settings.StartCol) > columnNumber(settings.EndCol) {
		return fmt.Errorf("%w: start_col %s is after end_col %s", apperrors.ErrValidation, settings.StartCol, settings.EndCol)
	}
	for col, f := range settings.Filters {
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fmt.Errorf("%w: filter %q has min greater than max", apperrors.ErrValidation, col)
		}
		if f.From != nil && f.To != nil && f.From.Compare(*f.To) > 0 {
			return fmt.Errorf("%w: filter %q has from after to", apperrors.ErrValidation, col)
		}
	}
	return nil
}

func newSettingsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("column", func(fl validator.FieldLevel) bool {
		return domain.IsColumnLabel(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// columnNumber converts a column label to its 1-based index (A=1, Z=26, AA=27).
func columnNumber(label string) int {
	n := 0
	for _, r := range label {
		n = n*26 + int(r-'A'+1)
	}
	return n
}

func asStorageError(err error) error {
	if errors.Is(err, apperrors.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}
