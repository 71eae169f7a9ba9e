package ups

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

// Hosts and endpoints of the UPS REST API.
const (
	SandboxURL    = "https://wwwcie.ups.com"
	ProductionURL = "https://onlinetools.ups.com"

	AuthPath    = "/security/v1/oauth/token"
	shipPath    = "/api/shipments/v2409/ship"
	voidPath    = "/api/shipments/v2409/void/cancel/"
	locatorPath = "/api/locations/v3/search/availabilities/64"
)

// APIClient defines the UPS API operations the Client needs.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CreateShipment books a shipment and returns the carrier response.
	CreateShipment(ctx context.Context, req *LabelRequest) (*APIResponse, error)

	// VoidShipment cancels a booked shipment by tracking number.
	VoidShipment(ctx context.Context, trackingNumber string) (*APIResponse, error)

	// LocateAccessPoints searches UPS Access Points.
	LocateAccessPoints(ctx context.Context, req *LocatorRequest) (*APIResponse, error)

	// TestConnection verifies the credentials with a token exchange.
	TestConnection(ctx context.Context) error
}

// APIResponse is the result of one HTTP exchange.
type APIResponse struct {
	StatusCode int
	Raw        []byte
	Body       gjson.Result

	// Err is set for responses with a status of 300 or above.
	Err *shipper.ShipperError
}

// IsError reports whether the carrier answered with an error status.
func (r *APIResponse) IsError() bool {
	return r.Err != nil
}

// newAPIResponse parses a raw body.
func newAPIResponse(status int, raw []byte) *APIResponse {
	return &APIResponse{
		StatusCode: status,
		Raw:        raw,
		Body:       gjson.ParseBytes(raw),
	}
}

func voidEndpoint(trackingNumber string) string {
	return fmt.Sprintf("%s%s", voidPath, url.PathEscape(trackingNumber))
}
