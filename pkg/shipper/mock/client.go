// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

// minimalPDF is a one-page blank PDF used as label file.
const minimalPDF = "%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 288 432]>>endobj\n" +
	"trailer<</Root 1 0 R>>\n%%EOF\n"

// Client is a mock shipper for testing.
type Client struct {
	name      string
	Connected bool

	cancelled atomic.Int64
}

// New creates a new mock shipper that reports a working connection.
func New(name string) *Client {
	return &Client{name: name, Connected: true}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Cancelled returns how many labels were cancelled.
func (c *Client) Cancelled() int64 {
	return c.cancelled.Load()
}

// GetLabel returns a mock label artifact.
func (c *Client) GetLabel(ctx context.Context, label *shipper.Label) (*shipper.LabelArtifact, error) {
	tracking := fmt.Sprintf("1Z%s%09d", c.name[:min(3, len(c.name))], time.Now().UnixNano()%1000000000)

	return &shipper.LabelArtifact{
		TrackingNumber: tracking,
		Charges:        shipper.Money{Amount: decimal.RequireFromString("15.82"), Currency: "EUR"},
		PrimaryFile:    []byte(minimalPDF),
		Booking: &shipper.Booking{
			TrackingNumber: tracking,
			LabelFormat:    "PDF",
			LabelImage:     []byte(minimalPDF),
		},
	}, nil
}

// CancelLabel cancels a mock label.
func (c *Client) CancelLabel(ctx context.Context, label *shipper.Label) error {
	if label.TrackingNumber == "" {
		return shipper.NewShipperError(c.name, "mock_error", "missing tracking number")
	}
	c.cancelled.Add(1)
	return nil
}

// TestConnection reports the configured connection state.
func (c *Client) TestConnection(ctx context.Context) bool {
	return c.Connected
}

// FindPickupPoints returns mock pickup points near the address.
func (c *Client) FindPickupPoints(ctx context.Context, address shipper.Address, limit int) ([]shipper.PickupPoint, error) {
	if limit <= 0 {
		limit = 2
	}
	points := make([]shipper.PickupPoint, 0, limit)
	for i := 0; i < limit; i++ {
		points = append(points, shipper.PickupPoint{
			ID:   fmt.Sprintf("%s-pp-%d", c.name, i+1),
			Name: fmt.Sprintf("%s Access Point %d", c.name, i+1),
			Address: shipper.Address{
				Line1:       fmt.Sprintf("%d Market Street", i+1),
				City:        address.City,
				PostalCode:  address.PostalCode,
				CountryCode: address.CountryCode,
			},
			Distance:     decimal.NewFromFloat(0.5 * float64(i+1)),
			DistanceUnit: "KM",
		})
	}
	return points, nil
}

// FindPickupPointByID returns a mock pickup point.
func (c *Client) FindPickupPointByID(ctx context.Context, id string, address shipper.Address) (*shipper.PickupPoint, error) {
	points, _ := c.FindPickupPoints(ctx, address, 3)
	for _, p := range points {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}
