package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

func seedSweepStore(store *mockStore, backend *mockBackend, n int) {
	for i := 0; i < n; i++ {
		url := fmt.Sprintf("https://flipkart.com/item-%d/p/itm%d", i, i)
		store.trackings[fmt.Sprintf("trk-%d", i)] = &models.TrackedProduct{
			TrackingID:   fmt.Sprintf("trk-%d", i),
			UserID:       101,
			ChatID:       202,
			ProductURL:   url,
			Title:        fmt.Sprintf("Item %d", i),
			CurrentPrice: 1000,
			LastPrice:    1000,
			Active:       true,
		}
		backend.setSnapshot(url, fmt.Sprintf("Item %d", i), 1000)
	}
}

func TestRunSweep_CountsAndNotifies(t *testing.T) {
	store := newMockStore()
	backend := newMockBackend()
	seedSweepStore(store, backend, 3)

	// One record drops in price, the rest hold steady.
	dropURL := "https://flipkart.com/item-1/p/itm1"
	backend.setSnapshot(dropURL, "Item 1", 900)

	n := &mockNotifier{}
	r := newTestReconciler(store, n, backend, nil)
	report, err := r.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep() error = %v", err)
	}

	if report.Checked != 3 {
		t.Errorf("Checked = %d, want 3", report.Checked)
	}
	if report.Changed != 1 {
		t.Errorf("Changed = %d, want 1", report.Changed)
	}
	if report.Errors != 0 {
		t.Errorf("Errors = %d, want 0", report.Errors)
	}
	if len(n.sent) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(n.sent))
	}
	if n.chatIDs[0] != 202 {
		t.Errorf("Notification chatID = %d, want 202", n.chatIDs[0])
	}
	if !strings.Contains(n.sent[0], "900") {
		t.Errorf("Notification should mention the new price, got %q", n.sent[0])
	}
}

func TestRunSweep_RecordFailureDoesNotAbort(t *testing.T) {
	store := newMockStore()
	backend := newMockBackend()
	seedSweepStore(store, backend, 4)

	backend.errs["https://flipkart.com/item-0/p/itm0"] = errors.New("connection reset")
	backend.setSnapshot("https://flipkart.com/item-3/p/itm3", "Item 3", 950)

	r := newTestReconciler(store, &mockNotifier{}, backend, nil)
	report, err := r.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep() error = %v", err)
	}

	if report.Checked != 4 {
		t.Errorf("Checked = %d, want 4 even with one record failing", report.Checked)
	}
	if report.Errors != 1 {
		t.Errorf("Errors = %d, want 1", report.Errors)
	}
	if report.Changed != 1 {
		t.Errorf("Changed = %d, want 1; later records must still be processed", report.Changed)
	}
	if len(backend.calls) != 4 {
		t.Errorf("Expected all 4 records checked, backend saw %d", len(backend.calls))
	}
}

func TestRunSweep_UnsuccessfulExtractionCountsAsError(t *testing.T) {
	store := newMockStore()
	backend := newMockBackend()
	seedSweepStore(store, backend, 1)

	url := "https://flipkart.com/item-0/p/itm0"
	backend.snapshots[url] = models.ProductSnapshot{
		Title:     "Flipkart Product",
		Success:   false,
		SourceURL: url,
	}

	r := newTestReconciler(store, &mockNotifier{}, backend, nil)
	report, err := r.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep() error = %v", err)
	}
	if report.Errors != 1 || report.Changed != 0 {
		t.Errorf("Report = %+v, want 1 error and no changes", report)
	}
	if store.trackings["trk-0"].CurrentPrice != 1000 {
		t.Error("Failed extraction must not touch the stored price")
	}
}

func TestRunSweep_UnknownPriceIsNotAChange(t *testing.T) {
	store := newMockStore()
	backend := newMockBackend()
	seedSweepStore(store, backend, 1)

	url := "https://flipkart.com/item-0/p/itm0"
	backend.snapshots[url] = models.ProductSnapshot{
		Title:     "Item 0",
		Price:     models.PriceUnknown,
		Success:   true,
		SourceURL: url,
	}

	n := &mockNotifier{}
	r := newTestReconciler(store, n, backend, nil)
	report, err := r.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep() error = %v", err)
	}
	if report.Changed != 0 || len(n.sent) != 0 {
		t.Errorf("Unknown price produced a change: report %+v, %d notifications", report, len(n.sent))
	}
}

func TestRunSweep_NotificationFailureDoesNotCountAsError(t *testing.T) {
	store := newMockStore()
	backend := newMockBackend()
	seedSweepStore(store, backend, 1)
	backend.setSnapshot("https://flipkart.com/item-0/p/itm0", "Item 0", 700)

	n := &mockNotifier{sendErr: errors.New("telegram unavailable")}
	r := newTestReconciler(store, n, backend, nil)
	report, err := r.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep() error = %v", err)
	}

	if report.Changed != 1 {
		t.Errorf("Changed = %d, want 1; the change is committed regardless of delivery", report.Changed)
	}
	if report.Errors != 0 {
		t.Errorf("Errors = %d, want 0; delivery failures are logged, not counted", report.Errors)
	}
	if store.trackings["trk-0"].CurrentPrice != 700 {
		t.Error("Price change must persist even when the notification fails")
	}
}

func TestRunSweep_ListFailure(t *testing.T) {
	store := newMockStore()
	store.listErr = errors.New("firestore unavailable")
	r := newTestReconciler(store, &mockNotifier{}, newMockBackend(), nil)

	if _, err := r.RunSweep(context.Background()); err == nil {
		t.Error("Listing failure should abort the sweep with an error")
	}
}

func TestRunSweep_CancellationDuringPause(t *testing.T) {
	store := newMockStore()
	backend := newMockBackend()
	seedSweepStore(store, backend, 4)

	cfg := testConfig()
	cfg.SweepPaceEvery = 2
	cfg.SweepPause = 10 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	r := newTestReconciler(store, &mockNotifier{}, backend, cfg)
	report, err := r.RunSweep(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if report.Checked != 2 {
		t.Errorf("Checked = %d, want 2 before the cancelled pause", report.Checked)
	}
}
