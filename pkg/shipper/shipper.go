// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// Shipper defines the interface that all shipping carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "ups").
	Name() string

	// GetLabel books a label with the carrier and returns the print-ready
	// artifact. On an artifact error the returned artifact is still non-nil
	// and carries the tracking number of the booking.
	GetLabel(ctx context.Context, label *Label) (*LabelArtifact, error)

	// CancelLabel voids a previously booked label.
	CancelLabel(ctx context.Context, label *Label) error

	// TestConnection reports whether the configured credentials work.
	TestConnection(ctx context.Context) bool

	// FindPickupPoints returns pickup points near an address.
	FindPickupPoints(ctx context.Context, address Address, limit int) ([]PickupPoint, error)

	// FindPickupPointByID looks up a single pickup point. It returns nil
	// without error when the carrier does not know the id.
	FindPickupPointByID(ctx context.Context, id string, address Address) (*PickupPoint, error)
}

// ArtifactStore persists label files for the surrounding application.
type ArtifactStore interface {
	// UploadArtifact stores data and returns its path. Variant distinguishes
	// files of the same label, e.g. "label" or "form_01".
	UploadArtifact(ctx context.Context, data []byte, variant string) (string, error)
}
