package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

func delegateServer(t *testing.T, handler func(req delegateRequest) delegateResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req delegateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode delegate request: %v", err)
		}
		if req.Action != "check_price" {
			t.Errorf("Expected action check_price, got %q", req.Action)
		}
		_ = json.NewEncoder(w).Encode(handler(req))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func strPtr(s string) *string { return &s }

func TestDelegateBackend_Success(t *testing.T) {
	srv := delegateServer(t, func(delegateRequest) delegateResponse {
		return delegateResponse{Success: true, Price: strPtr("12,345")}
	})

	b := NewDelegateBackend("delegate", StaticEndpoint(srv.URL))
	snap, err := b.Check(context.Background(), "https://flipkart.com/acme-x5-smartphone/p/itm1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if !snap.Success {
		t.Error("Expected successful snapshot")
	}
	if snap.Price != 12345 {
		t.Errorf("Expected normalized price 12345, got %d", snap.Price)
	}
	// No delegate title: the slug should fill in.
	if snap.Title != "Acme X5 Smartphone" {
		t.Errorf("Expected slug-derived title, got %q", snap.Title)
	}
	if snap.Platform != models.PlatformFlipkart {
		t.Errorf("Expected Flipkart platform, got %v", snap.Platform)
	}
}

func TestDelegateBackend_FailureResponse(t *testing.T) {
	srv := delegateServer(t, func(delegateRequest) delegateResponse {
		return delegateResponse{Success: false, Error: strPtr("blocked by anti-bot")}
	})

	b := NewDelegateBackend("delegate", StaticEndpoint(srv.URL))
	snap, err := b.Check(context.Background(), "https://flipkart.com/p/p/itm1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if snap.Success {
		t.Error("Expected unsuccessful snapshot when delegate fails with no data")
	}
	if snap.Price != models.PriceUnknown {
		t.Errorf("Expected unknown price, got %d", snap.Price)
	}
	if snap.Title != "Flipkart Product" {
		t.Errorf("Expected fallback title, got %q", snap.Title)
	}
}

func TestDelegateBackend_DelegateTitleWins(t *testing.T) {
	srv := delegateServer(t, func(delegateRequest) delegateResponse {
		return delegateResponse{Success: true, Price: strPtr("999"), Title: strPtr("  Acme   Bottle ")}
	})

	b := NewDelegateBackend("delegate", StaticEndpoint(srv.URL))
	snap, err := b.Check(context.Background(), "https://flipkart.com/other-slug-name/p/itm1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if snap.Title != "Acme Bottle" {
		t.Errorf("Expected normalized delegate title, got %q", snap.Title)
	}
}

func TestDelegateBackend_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	b := NewDelegateBackend("tunnel", StaticEndpoint(srv.URL))
	if _, err := b.Check(context.Background(), "https://flipkart.com/x/p/itm1"); err == nil {
		t.Error("Expected error for non-200 delegate status")
	}
}

func TestDelegateBackend_EmptyEndpoint(t *testing.T) {
	b := NewDelegateBackend("tunnel", StaticEndpoint(""))
	if _, err := b.Check(context.Background(), "https://flipkart.com/x/p/itm1"); err == nil {
		t.Error("Expected error when no endpoint is available")
	}
}
