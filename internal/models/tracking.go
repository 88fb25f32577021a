package models

import (
	"errors"
	"time"
)

// ErrTrackingExists is returned when attempting to create a tracking record
// that already exists for the same (user, URL) pair.
var ErrTrackingExists = errors.New("tracking already exists")

// PriceUnknown is the sentinel for "could not determine a price".
// Zero deliberately conflates "free" and "unknown"; the reconciler treats
// an observed zero as a non-event, never as a price change.
const PriceUnknown = 0

// Platform identifies the storefront a product URL belongs to.
type Platform string

const (
	PlatformAmazon   Platform = "Amazon India"
	PlatformFlipkart Platform = "Flipkart"
	PlatformUnknown  Platform = "Unknown"
)

// ProductSnapshot is the result of a single extraction attempt. It is never
// persisted as-is; it is folded into a new TrackedProduct or compared against
// an existing one within the call that produced it.
type ProductSnapshot struct {
	Title      string
	Price      int // PriceUnknown when no candidate survived
	Success    bool
	SourceURL  string
	Platform   Platform
	CapturedAt time.Time
}

// PriceKnown reports whether the snapshot carries a usable price.
func (s ProductSnapshot) PriceKnown() bool {
	return s.Price != PriceUnknown
}

// TrackedProduct is the durable subscription linking a user to a product URL
// and its last known price. At most one active record should exist per
// (UserID, ProductURL) pair; the dedupe check is read-then-write, so two
// concurrent requests can briefly create duplicates.
type TrackedProduct struct {
	TrackingID   string    `firestore:"-"`
	UserID       int64     `firestore:"userID" validate:"required"`
	ChatID       int64     `firestore:"chatID" validate:"required"`
	ProductURL   string    `firestore:"productURL" validate:"required,url"`
	Title        string    `firestore:"title" validate:"required"`
	Platform     Platform  `firestore:"platform"`
	CurrentPrice int       `firestore:"currentPrice" validate:"gte=0"`
	LastPrice    int       `firestore:"lastPrice" validate:"gte=0"`
	Active       bool      `firestore:"active"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// PriceHistoryEntry is an append-only record of one confirmed price change.
type PriceHistoryEntry struct {
	TrackingID string    `firestore:"trackingID"`
	Price      int       `firestore:"price"`
	RecordedAt time.Time `firestore:"recordedAt"`
}

// EndpointStatus is the state reported by the external tunnel process.
type EndpointStatus string

const (
	EndpointActive   EndpointStatus = "active"
	EndpointInactive EndpointStatus = "inactive"
)

// EndpointRecord describes the currently live scraping backend. It is owned
// by an external heartbeat process; the core only reads it and judges freshness.
type EndpointRecord struct {
	URL         string         `firestore:"url"`
	Status      EndpointStatus `firestore:"status"`
	LastUpdated time.Time      `firestore:"lastUpdated"`
}

// ChangeOutcome is the reconciler's verdict on one observed price.
type ChangeOutcome struct {
	Changed  bool
	OldPrice int
	NewPrice int
}

// Unchanged is the no-op outcome.
var Unchanged = ChangeOutcome{}

// SweepReport summarizes one scheduled pass over all active trackings.
type SweepReport struct {
	Checked int
	Changed int
	Errors  int
}
