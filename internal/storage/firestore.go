package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

const (
	trackingsCollection = "trackings"
	historyCollection   = "price_history"
	endpointsCollection = "endpoints"
	tunnelDocumentID    = "tunnel"
)

type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// FindActiveTracking returns the active record for (userID, productURL), or
// nil when none exists. There is no transactional uniqueness behind this
// check; callers treat it as best-effort dedupe.
func (c *Client) FindActiveTracking(ctx context.Context, userID int64, productURL string) (*models.TrackedProduct, error) {
	iter := c.client.Collection(trackingsCollection).
		Where("userID", "==", userID).
		Where("productURL", "==", productURL).
		Where("active", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active tracking: %w", err)
	}
	return docToTracking(doc)
}

// GetTracking retrieves a tracking record by its document ID.
func (c *Client) GetTracking(ctx context.Context, trackingID string) (*models.TrackedProduct, error) {
	doc, err := c.client.Collection(trackingsCollection).Doc(trackingID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tracking %s: %w", trackingID, err)
	}
	return docToTracking(doc)
}

// CreateTracking persists a new record under its pre-generated ID. Create
// fails if the document already exists, which maps to ErrTrackingExists.
func (c *Client) CreateTracking(ctx context.Context, tracking models.TrackedProduct) error {
	docRef := c.client.Collection(trackingsCollection).Doc(tracking.TrackingID)
	if _, err := docRef.Create(ctx, tracking); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrTrackingExists
		}
		return fmt.Errorf("failed to create tracking: %w", err)
	}
	return nil
}

// UpdateTrackingPrice persists the price fields mutated by the reconciler.
func (c *Client) UpdateTrackingPrice(ctx context.Context, tracking models.TrackedProduct) error {
	docRef := c.client.Collection(trackingsCollection).Doc(tracking.TrackingID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "currentPrice", Value: tracking.CurrentPrice},
		{Path: "lastPrice", Value: tracking.LastPrice},
		{Path: "updatedAt", Value: tracking.UpdatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to update tracking %s: %w", tracking.TrackingID, err)
	}
	return nil
}

// DeactivateTracking soft-deletes a record. Deactivating an already inactive
// record is a successful no-op; records are never hard-deleted.
func (c *Client) DeactivateTracking(ctx context.Context, trackingID string) error {
	docRef := c.client.Collection(trackingsCollection).Doc(trackingID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "active", Value: false},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate tracking %s: %w", trackingID, err)
	}
	return nil
}

// ListActiveTrackings enumerates every active record, for the sweep.
func (c *Client) ListActiveTrackings(ctx context.Context) ([]models.TrackedProduct, error) {
	iter := c.client.Collection(trackingsCollection).
		Where("active", "==", true).
		Documents(ctx)
	defer iter.Stop()

	return collectTrackings(iter)
}

// ListUserTrackings enumerates a single user's active records, for /list.
func (c *Client) ListUserTrackings(ctx context.Context, userID int64) ([]models.TrackedProduct, error) {
	iter := c.client.Collection(trackingsCollection).
		Where("userID", "==", userID).
		Where("active", "==", true).
		Documents(ctx)
	defer iter.Stop()

	return collectTrackings(iter)
}

// AppendPriceHistory records one confirmed price change. Entries are
// append-only and immutable.
func (c *Client) AppendPriceHistory(ctx context.Context, entry models.PriceHistoryEntry) error {
	if _, _, err := c.client.Collection(historyCollection).Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to append price history for %s: %w", entry.TrackingID, err)
	}
	return nil
}

// PriceHistory returns the most recent entries for a tracking record,
// newest first, bounded by limit.
func (c *Client) PriceHistory(ctx context.Context, trackingID string, limit int) ([]models.PriceHistoryEntry, error) {
	iter := c.client.Collection(historyCollection).
		Where("trackingID", "==", trackingID).
		OrderBy("recordedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var entries []models.PriceHistoryEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate price history: %w", err)
		}
		var entry models.PriceHistoryEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Stats returns bot-wide counts for /stats.
func (c *Client) Stats(ctx context.Context) (activeTrackings, historyEntries int64, err error) {
	activeTrackings, err = c.count(ctx, c.client.Collection(trackingsCollection).Where("active", "==", true))
	if err != nil {
		return 0, 0, err
	}
	historyEntries, err = c.count(ctx, c.client.Collection(historyCollection).Query)
	if err != nil {
		return 0, 0, err
	}
	return activeTrackings, historyEntries, nil
}

func (c *Client) count(ctx context.Context, q firestore.Query) (int64, error) {
	snapshot, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count aggregation failed: %w", err)
	}
	value, ok := snapshot["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation result invalid: 'all' key missing")
	}
	pbValue, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count aggregation result has unexpected type %T", value)
	}
	return pbValue.GetIntegerValue(), nil
}

// GetEndpointRecord reads the tunnel heartbeat document. A missing document
// is not an error; the resolver treats nil as "use the fallback".
func (c *Client) GetEndpointRecord(ctx context.Context) (*models.EndpointRecord, error) {
	doc, err := c.client.Collection(endpointsCollection).Doc(tunnelDocumentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get endpoint record: %w", err)
	}
	var record models.EndpointRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal endpoint record: %w", err)
	}
	return &record, nil
}

func docToTracking(doc *firestore.DocumentSnapshot) (*models.TrackedProduct, error) {
	var tracking models.TrackedProduct
	if err := doc.DataTo(&tracking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracking data: %w", err)
	}
	tracking.TrackingID = doc.Ref.ID
	return &tracking, nil
}

func collectTrackings(iter *firestore.DocumentIterator) ([]models.TrackedProduct, error) {
	var trackings []models.TrackedProduct
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate trackings: %w", err)
		}
		tracking, convErr := docToTracking(doc)
		if convErr != nil {
			return nil, convErr
		}
		trackings = append(trackings, *tracking)
	}
	return trackings, nil
}
