package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/notifier"
)

// RunSweep re-checks every active tracking record sequentially, with a pacing
// pause after every few records so the upstream site never sees a burst.
// The sequential walk is deliberate rate limiting, not a missed optimization.
// Per-record failures are counted and skipped; the sweep always completes and
// reports totals unless the context itself is cancelled.
func (r *Reconciler) RunSweep(ctx context.Context) (models.SweepReport, error) {
	var report models.SweepReport

	records, err := r.store.ListActiveTrackings(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list active trackings: %w", err)
	}
	slog.Info("Sweep started", "records", len(records), "backend", r.backend.Name())

	for i := range records {
		record := &records[i]
		report.Checked++

		r.sweepOne(ctx, record, &report)

		if (i+1)%r.cfg.SweepPaceEvery == 0 && i+1 < len(records) {
			select {
			case <-ctx.Done():
				slog.Warn("Sweep cancelled", "checked", report.Checked)
				return report, ctx.Err()
			case <-time.After(r.cfg.SweepPause):
			}
		}
	}

	slog.Info("Sweep finished", "checked", report.Checked, "changed", report.Changed, "errors", report.Errors)
	return report, nil
}

func (r *Reconciler) sweepOne(ctx context.Context, record *models.TrackedProduct, report *models.SweepReport) {
	snap, err := r.backend.Check(ctx, record.ProductURL)
	if err != nil {
		report.Errors++
		slog.Warn("Sweep extraction error", "trackingID", record.TrackingID, "error", err)
		return
	}
	if !snap.Success {
		// No error state for a record: it is simply skipped until extraction
		// succeeds again or the user stops it.
		report.Errors++
		slog.Info("Sweep extraction unsuccessful", "trackingID", record.TrackingID, "url", record.ProductURL)
		return
	}

	outcome, err := r.ApplyObservedPrice(ctx, record, snap.Price)
	if err != nil {
		report.Errors++
		slog.Warn("Sweep persistence error", "trackingID", record.TrackingID, "error", err)
		return
	}
	if !outcome.Changed {
		return
	}

	report.Changed++
	change := notifier.DescribeChange(outcome.OldPrice, outcome.NewPrice)
	text := notifier.FormatChangeMessage(record, change)
	if err := r.notifier.Send(ctx, record.ChatID, text); err != nil {
		// Fire and forget: the price change is already committed.
		slog.Warn("Change notification failed", "trackingID", record.TrackingID, "error", err)
	}
}
