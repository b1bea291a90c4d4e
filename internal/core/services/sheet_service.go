package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/tabular"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSheetCacheSize    = 256
	defaultSheetCacheTTL     = 5 * time.Minute
	defaultSheetFetchTimeout = 15 * time.Second
)

type sheetCacheKey struct {
	spreadsheetID string
	rangeA1       string
}

type sheetCacheEntry struct {
	rs        domain.ResultSet
	fetchedAt time.Time
}

type sheetService struct {
	BaseService
	source  portsrepo.SheetSource // nil: serve sample data
	sample  portsrepo.SheetSource
	cache   *expirable.LRU[sheetCacheKey, sheetCacheEntry]
	timeout time.Duration
	now     func() time.Time
}

// SheetOption configures the sheet service.
type SheetOption func(*sheetConfig)

type sheetConfig struct {
	size    int
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// WithSheetCache sets the cache capacity and entry lifetime.
func WithSheetCache(size int, ttl time.Duration) SheetOption {
	return func(c *sheetConfig) {
		if size > 0 {
			c.size = size
		}
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFetchTimeout bounds each upstream call.
func WithFetchTimeout(d time.Duration) SheetOption {
	return func(c *sheetConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSheetClock replaces time.Now for fetch timestamps.
func WithSheetClock(now func() time.Time) SheetOption {
	return func(c *sheetConfig) { c.now = now }
}

// NewSheetService fetches through source, falling back to sample when source is nil.
// Results are cached per (spreadsheet, range).
func NewSheetService(source, sample portsrepo.SheetSource, opts ...SheetOption) portssvc.SheetSvcFacade {
	cfg := sheetConfig{
		size:    defaultSheetCacheSize,
		ttl:     defaultSheetCacheTTL,
		timeout: defaultSheetFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &sheetService{
		source:  source,
		sample:  sample,
		cache:   expirable.NewLRU[sheetCacheKey, sheetCacheEntry](cfg.size, nil, cfg.ttl),
		timeout: cfg.timeout,
		now:     cfg.now,
	}
}

var _ portssvc.SheetSvcFacade = (*sheetService)(nil)

func (s *sheetService) Fetch(ctx context.Context, settings domain.PageSettings) (domain.ResultSet, domain.FetchMeta, error) {
	rangeA1 := settings.RangeA1()
	meta := domain.FetchMeta{SpreadsheetID: settings.SpreadsheetID, Range: rangeA1}

	if s.source == nil {
		rs, sampleMeta := s.SampleData(ctx)
		sampleMeta.Range = rangeA1
		return rs, sampleMeta, nil
	}

	key := sheetCacheKey{spreadsheetID: settings.SpreadsheetID, rangeA1: rangeA1}
	if hit, ok := s.cache.Get(key); ok {
		meta.Cached = true
		meta.FetchedAt = hit.fetchedAt
		return hit.rs, meta, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	titles, err := s.source.SheetTitles(fetchCtx, settings.SpreadsheetID)
	if err != nil {
		return domain.ResultSet{}, meta, s.fetchError(ctx, err, rangeA1)
	}
	if !hasTitle(titles, settings.SheetName) {
		return domain.ResultSet{}, meta, fmt.Errorf("sheet %q in spreadsheet %s: %w", settings.SheetName, settings.SpreadsheetID, apperrors.ErrNotFound)
	}

	values, err := s.source.ReadRange(fetchCtx, settings.SpreadsheetID, rangeA1)
	if err != nil {
		return domain.ResultSet{}, meta, s.fetchError(ctx, err, rangeA1)
	}

	rs := toResultSet(values)
	meta.FetchedAt = s.now()
	s.cache.Add(key, sheetCacheEntry{rs: rs, fetchedAt: meta.FetchedAt})
	s.LogDebug(ctx, "Sheet fetched", slog.String("range", rangeA1), slog.Int("rows", rs.Len()))
	return rs, meta, nil
}

func (s *sheetService) SampleData(ctx context.Context) (domain.ResultSet, domain.FetchMeta) {
	meta := domain.FetchMeta{Sample: true, FetchedAt: s.now()}
	if s.sample == nil {
		return toResultSet(nil), meta
	}
	values, err := s.sample.ReadRange(ctx, "", "")
	if err != nil {
		s.LogError(ctx, err, "Sample data unavailable")
		return toResultSet(nil), meta
	}
	return toResultSet(values), meta
}

func (s *sheetService) Invalidate(ctx context.Context) {
	s.cache.Purge()
	s.LogInfo(ctx, "Sheet cache cleared")
}

func (s *sheetService) fetchError(ctx context.Context, err error, rangeA1 string) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrFetch):
	case errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: timed out: %w", apperrors.ErrFetch, err)
	default:
		err = fmt.Errorf("%w: %w", apperrors.ErrFetch, err)
	}
	s.LogWarn(ctx, "Sheet fetch failed", slog.String("range", rangeA1), slog.String("error", err.Error()))
	return err
}

// toResultSet treats the first row as the header. An empty range is an empty set.
func toResultSet(values [][]string) domain.ResultSet {
	if len(values) == 0 {
		return domain.ResultSet{Columns: []string{}, Rows: []domain.Row{}}
	}
	return tabular.Coerce(values[0], values[1:])
}

func hasTitle(titles []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, t := range titles {
		if strings.TrimSpace(t) == want {
			return true
		}
	}
	return false
}
