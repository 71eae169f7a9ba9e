package ups

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateShipment     func(ctx context.Context, req *LabelRequest) (*APIResponse, error)
	OnVoidShipment       func(ctx context.Context, trackingNumber string) (*APIResponse, error)
	OnLocateAccessPoints func(ctx context.Context, req *LocatorRequest) (*APIResponse, error)
	OnTestConnection     func(ctx context.Context) error

	mu           sync.Mutex
	lastShipment *LabelRequest
	calls        atomic.Int32
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Calls returns how many API calls the mock received.
func (m *MockAPIClient) Calls() int {
	return int(m.calls.Load())
}

// LastShipment returns the last request passed to CreateShipment.
func (m *MockAPIClient) LastShipment() *LabelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastShipment
}

func (m *MockAPIClient) enter() error {
	m.calls.Add(1)
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return shipper.NewShipperError(carrierName, "MOCK_ERROR", "Simulated API error")
	}
	return nil
}

// CreateShipment returns a booked shipment with a generated label image.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *LabelRequest) (*APIResponse, error) {
	m.mu.Lock()
	m.lastShipment = req
	m.mu.Unlock()

	if err := m.enter(); err != nil {
		return nil, err
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	tracking := "1Z" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
	return MockShipmentResponse(tracking, "12.45", "EUR"), nil
}

// VoidShipment reports a successful void.
func (m *MockAPIClient) VoidShipment(ctx context.Context, trackingNumber string) (*APIResponse, error) {
	if err := m.enter(); err != nil {
		return nil, err
	}

	if m.OnVoidShipment != nil {
		return m.OnVoidShipment(ctx, trackingNumber)
	}

	return mockJSON(map[string]any{
		"VoidShipmentResponse": map[string]any{
			"Response": map[string]any{
				"ResponseStatus": map[string]any{"Code": "1", "Description": "Success"},
			},
			"SummaryResult": map[string]any{
				"Status": map[string]any{"Code": "1", "Description": "Voided"},
			},
		},
	}), nil
}

// LocateAccessPoints returns Access Points around the requested city.
func (m *MockAPIClient) LocateAccessPoints(ctx context.Context, req *LocatorRequest) (*APIResponse, error) {
	if err := m.enter(); err != nil {
		return nil, err
	}

	if m.OnLocateAccessPoints != nil {
		return m.OnLocateAccessPoints(ctx, req)
	}

	origin := req.LocatorRequest.OriginAddress.AddressKeyFormat
	wanted := req.LocatorRequest.LocationSearchCriteria.AccessPointSearch.PublicAccessPointID

	var locations []any
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("U%08d", i)
		if wanted != "" && wanted != id {
			continue
		}
		locations = append(locations, map[string]any{
			"LocationID": fmt.Sprintf("%d", 100000+i),
			"AddressKeyFormat": map[string]any{
				"ConsigneeName":      fmt.Sprintf("UPS Access Point %d", i),
				"AddressLine":        fmt.Sprintf("Hauptstrasse %d", i),
				"PoliticalDivision2": origin.PoliticalDivision2,
				"PostcodePrimaryLow": origin.PostcodePrimaryLow,
				"CountryCode":        origin.CountryCode,
			},
			"Geocode": map[string]any{"Latitude": "52.5200", "Longitude": "13.4050"},
			"Distance": map[string]any{
				"Value":             fmt.Sprintf("0.%d", i*3),
				"UnitOfMeasurement": map[string]any{"Code": "KM"},
			},
			"AccessPointInformation": map[string]any{"PublicAccessPointID": id},
		})
	}

	return mockJSON(map[string]any{
		"LocatorResponse": map[string]any{
			"Response":      map[string]any{"ResponseStatusCode": "1"},
			"SearchResults": map[string]any{"DropLocation": locations},
		},
	}), nil
}

// TestConnection succeeds unless errors are simulated.
func (m *MockAPIClient) TestConnection(ctx context.Context) error {
	if err := m.enter(); err != nil {
		return err
	}
	if m.OnTestConnection != nil {
		return m.OnTestConnection(ctx)
	}
	return nil
}

// MockShipmentResponse builds a successful ship response.
func MockShipmentResponse(tracking, amount, currency string) *APIResponse {
	return mockJSON(map[string]any{
		"ShipmentResponse": map[string]any{
			"Response": map[string]any{
				"ResponseStatus": map[string]any{"Code": "1", "Description": "Success"},
			},
			"ShipmentResults": map[string]any{
				"ShipmentIdentificationNumber": tracking,
				"ShipmentCharges": map[string]any{
					"TotalCharges": map[string]any{"CurrencyCode": currency, "MonetaryValue": amount},
				},
				"PackageResults": []any{map[string]any{
					"TrackingNumber": tracking,
					"ShippingLabel": map[string]any{
						"ImageFormat":  map[string]any{"Code": "GIF"},
						"GraphicImage": base64.StdEncoding.EncodeToString(MockLabelImage()),
					},
				}},
			},
		},
	})
}

// MockLabelImage returns a small 4x6 label GIF.
func MockLabelImage() []byte {
	img := image.NewPaletted(image.Rect(0, 0, 120, 180), color.Palette{color.White, color.Black})
	for x := 10; x < 110; x++ {
		for y := 10; y < 20; y++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	var buf bytes.Buffer
	_ = gif.Encode(&buf, img, nil)
	return buf.Bytes()
}

func mockJSON(v any) *APIResponse {
	raw, _ := json.Marshal(v)
	return newAPIResponse(200, raw)
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
