package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
)

// logResetNotifier stands in for a mail gateway, which the dashboard does not
// ship with. The token itself is a credential and only reaches the log at
// Debug level when revealLinks is set.
type logResetNotifier struct {
	BaseService
	baseURL     string
	revealLinks bool
}

// NewLogResetNotifier builds links of the form <baseURL>/?reset_token=<token>.
// revealLinks should be false in production.
func NewLogResetNotifier(baseURL string, revealLinks bool) portssvc.ResetNotifier {
	return &logResetNotifier{baseURL: strings.TrimRight(baseURL, "/"), revealLinks: revealLinks}
}

func (n *logResetNotifier) NotifyPasswordReset(ctx context.Context, email, token string) error {
	n.LogInfo(ctx, "Password reset link issued", slog.String("email", email))
	if n.revealLinks {
		link := fmt.Sprintf("%s/?reset_token=%s", n.baseURL, url.QueryEscape(token))
		n.LogDebug(ctx, "Password reset link", slog.String("email", email), slog.String("link", link))
	}
	return nil
}
