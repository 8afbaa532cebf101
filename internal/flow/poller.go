package flow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nirvista/onboard/internal/authapi"
)

// StatusFetcher reads the KYC review status.
type StatusFetcher interface {
	KYCStatus(ctx context.Context, token string) (authapi.KYCStatus, error)
}

// StatusView is the KYC review state shown next to the upload form.
type StatusView struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
	Error           string `json:"error,omitempty"`
}

// merge applies a fresh fetch on top of v: failures only replace the error
// so the last known status stays visible.
func (v StatusView) merge(next StatusView) StatusView {
	if next.Error != "" {
		v.Error = next.Error
		return v
	}
	return next
}

// StatusPoller fetches the KYC status on a fixed interval.
type StatusPoller struct {
	api      StatusFetcher
	interval time.Duration
	logger   *slog.Logger
}

// NewStatusPoller creates a poller.
func NewStatusPoller(api StatusFetcher, interval time.Duration, logger *slog.Logger) *StatusPoller {
	return &StatusPoller{api: api, interval: interval, logger: logger}
}

// Interval returns the poll period.
func (p *StatusPoller) Interval() time.Duration { return p.interval }

// Fetch performs a single status request.
func (p *StatusPoller) Fetch(ctx context.Context, token string) StatusView {
	status, err := p.api.KYCStatus(ctx, token)
	if err != nil {
		if errors.Is(err, authapi.ErrTransport) {
			p.logger.Warn("kyc status poll error", slog.Any("error", err))
			return StatusView{Error: "Unable to reach status endpoint."}
		}
		return StatusView{Error: authapi.Message(err, "Unable to fetch KYC status.")}
	}
	return StatusView{Status: status.Status, RejectionReason: status.RejectionReason}
}

// Run fetches immediately and then once per interval, passing each merged
// view to apply, until ctx is cancelled. A fetch that completes after
// cancellation is discarded. Run blocks; start it on its own goroutine.
func (p *StatusPoller) Run(ctx context.Context, token string, apply func(StatusView)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var current StatusView
	for {
		next := p.Fetch(ctx, token)
		if ctx.Err() != nil {
			return
		}
		current = current.merge(next)
		apply(current)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
