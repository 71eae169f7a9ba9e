package ups_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/shipper/ups"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*ups.Client, *ups.MockAPIClient) {
	t.Helper()
	mock := ups.NewMockAPIClient()
	client := ups.NewWithAPIClient(testConfig, mock, otelzap.New(zap.NewNop()), nil)
	return client, mock
}

var berlin = shipper.Address{Line1: "Unter den Linden 1", City: "Berlin", PostalCode: "10117", CountryCode: "DE"}

func TestNew_UsesMock(t *testing.T) {
	client := ups.New(ups.Config{UseMock: true}, nil, nil, nil)
	assert.Equal(t, "ups", client.Name())
	assert.True(t, client.TestConnection(context.Background()))
}

func TestClient_GetLabel(t *testing.T) {
	client, mock := newTestClient(t)
	label := domesticUSLabel()

	artifact, err := client.GetLabel(context.Background(), label)
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.True(t, strings.HasPrefix(artifact.TrackingNumber, "1Z"))
	assert.Len(t, artifact.TrackingNumber, 18)
	assert.Equal(t, artifact.TrackingNumber, label.TrackingNumber)
	assert.Equal(t, "12.45", artifact.Charges.Amount.String())
	assert.Equal(t, "EUR", artifact.Charges.Currency)
	assert.True(t, bytes.HasPrefix(artifact.PrimaryFile, []byte("%PDF")))

	sent := mock.LastShipment()
	require.NotNil(t, sent)
	assert.Equal(t, "1001", sent.ShipmentRequest.Request.TransactionReference.CustomerContext)
	assert.Equal(t, 1, mock.Calls())
}

func TestClient_GetLabel_CarrierRejects(t *testing.T) {
	client, mock := newTestClient(t)
	mock.OnCreateShipment = func(ctx context.Context, req *ups.LabelRequest) (*ups.APIResponse, error) {
		return apiResponse(200, `{"ShipmentResponse":{"Response":{"ResponseStatus":{"Code":"0"}}}}`), nil
	}

	artifact, err := client.GetLabel(context.Background(), domesticUSLabel())
	assert.Nil(t, artifact)

	var shipperErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipperErr)
	assert.Equal(t, shipper.KindCarrier, shipperErr.Kind)
	assert.Equal(t, "There was an unknown error calling the UPS API.", shipperErr.Message)
}

func TestClient_GetLabel_APIError(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SimulateErrors = true

	label := domesticUSLabel()
	artifact, err := client.GetLabel(context.Background(), label)
	assert.Nil(t, artifact)
	assert.Error(t, err)
	assert.Empty(t, label.TrackingNumber)
}

func TestClient_GetLabel_MissingCustoms(t *testing.T) {
	client, mock := newTestClient(t)
	label := internationalLabel()
	label.Shipment.Customs = nil

	artifact, err := client.GetLabel(context.Background(), label)
	assert.Nil(t, artifact)
	assert.ErrorIs(t, err, ups.ErrMissingCustomsData)

	var shipperErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipperErr)
	assert.Equal(t, "missing_customs_data", shipperErr.Code)
	assert.Equal(t, 0, mock.Calls())
}

func TestClient_GetLabel_NoShipment(t *testing.T) {
	client, mock := newTestClient(t)

	_, err := client.GetLabel(context.Background(), &shipper.Label{})
	assert.ErrorIs(t, err, ups.ErrMissingShipment)
	assert.Equal(t, 0, mock.Calls())
}

func TestClient_GetLabel_ArtifactFailureKeepsBooking(t *testing.T) {
	client, mock := newTestClient(t)
	mock.OnCreateShipment = func(ctx context.Context, req *ups.LabelRequest) (*ups.APIResponse, error) {
		garbage := base64.StdEncoding.EncodeToString([]byte("not an image"))
		return apiResponse(200, `{"ShipmentResponse":{"Response":{"ResponseStatus":{"Code":"1"}},
			"ShipmentResults":{"ShipmentIdentificationNumber":"1ZBOOKED00000001",
			"PackageResults":{"ShippingLabel":{"ImageFormat":{"Code":"GIF"},"GraphicImage":"`+garbage+`"}}}}}`), nil
	}

	label := domesticUSLabel()
	artifact, err := client.GetLabel(context.Background(), label)
	require.Error(t, err)
	assert.True(t, shipper.IsArtifactError(err))

	require.NotNil(t, artifact)
	assert.Equal(t, "1ZBOOKED00000001", artifact.TrackingNumber)
	assert.Equal(t, "1ZBOOKED00000001", label.TrackingNumber)

	// A good image can be assembled later from the kept booking.
	artifact.Booking.LabelImage = ups.MockLabelImage()
	rebuilt, err := client.AssembleArtifact(artifact.Booking)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(rebuilt.PrimaryFile, []byte("%PDF")))
}

func TestClient_CancelLabel(t *testing.T) {
	client, mock := newTestClient(t)

	var voided string
	mock.OnVoidShipment = func(ctx context.Context, tracking string) (*ups.APIResponse, error) {
		voided = tracking
		return apiResponse(200, `{"VoidShipmentResponse":{"Response":{"ResponseStatus":{"Code":"1"}}}}`), nil
	}

	err := client.CancelLabel(context.Background(), &shipper.Label{TrackingNumber: "1Z12345E0205271688"})
	require.NoError(t, err)
	assert.Equal(t, "1Z12345E0205271688", voided)
}

func TestClient_CancelLabel_WithoutTrackingNumber(t *testing.T) {
	client, mock := newTestClient(t)

	err := client.CancelLabel(context.Background(), &shipper.Label{})

	var shipperErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipperErr)
	assert.Equal(t, "ups_error", shipperErr.Code)
	assert.Equal(t, 0, mock.Calls())
}

func TestClient_CancelLabel_Rejected(t *testing.T) {
	client, mock := newTestClient(t)
	mock.OnVoidShipment = func(ctx context.Context, tracking string) (*ups.APIResponse, error) {
		return apiResponse(200, `{"VoidShipmentResponse":{"Response":{"ResponseStatus":{"Code":"0"}}}}`), nil
	}

	err := client.CancelLabel(context.Background(), &shipper.Label{TrackingNumber: "1Z1"})

	var shipperErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipperErr)
	assert.Equal(t, "ups_error", shipperErr.Code)
}

func TestClient_TestConnection(t *testing.T) {
	client, mock := newTestClient(t)
	assert.True(t, client.TestConnection(context.Background()))

	mock.OnTestConnection = func(ctx context.Context) error {
		return shipper.NewAuthError("ups", "Error while authenticating with UPS")
	}
	assert.False(t, client.TestConnection(context.Background()))
}

func TestClient_FindPickupPoints(t *testing.T) {
	client, _ := newTestClient(t)

	points, err := client.FindPickupPoints(context.Background(), berlin, 2)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "U00000001", points[0].ID)
	assert.Equal(t, "Berlin", points[0].Address.City)
	assert.Equal(t, "10117", points[0].Address.PostalCode)
	assert.True(t, points[0].Distance.LessThan(points[1].Distance))

	points, err = client.FindPickupPoints(context.Background(), berlin, 0)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestClient_FindPickupPoints_Error(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SimulateErrors = true

	points, err := client.FindPickupPoints(context.Background(), berlin, 5)
	assert.Nil(t, points)
	assert.Error(t, err)
}

func TestClient_FindPickupPointByID(t *testing.T) {
	client, _ := newTestClient(t)

	point, err := client.FindPickupPointByID(context.Background(), "U00000002", berlin)
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, "U00000002", point.ID)
	assert.Equal(t, "UPS Access Point 2", point.Name)

	point, err = client.FindPickupPointByID(context.Background(), "U99999999", berlin)
	assert.NoError(t, err)
	assert.Nil(t, point)

	point, err = client.FindPickupPointByID(context.Background(), "", berlin)
	assert.NoError(t, err)
	assert.Nil(t, point)
}

func TestClient_FindPickupPointByID_CarrierErrorIsNotFound(t *testing.T) {
	client, mock := newTestClient(t)
	mock.OnLocateAccessPoints = func(ctx context.Context, req *ups.LocatorRequest) (*ups.APIResponse, error) {
		return nil, ups.ParseError(400, []byte(`{"response":{"errors":[{"code":"350104","message":"No locations found"}]}}`))
	}

	point, err := client.FindPickupPointByID(context.Background(), "U1", berlin)
	assert.NoError(t, err)
	assert.Nil(t, point)

	mock.OnLocateAccessPoints = func(ctx context.Context, req *ups.LocatorRequest) (*ups.APIResponse, error) {
		return nil, shipper.NewConnectivityError("ups", "Error while querying UPS endpoint")
	}

	point, err = client.FindPickupPointByID(context.Background(), "U1", berlin)
	assert.Nil(t, point)
	assert.True(t, errors.Is(err, shipper.ErrServiceUnavailable))
}

func TestClient_FindPickupPointByID_OutageIsAnError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"service unavailable", http.StatusServiceUnavailable},
		{"internal error", http.StatusInternalServerError},
		{"throttled", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t)
			mock.OnLocateAccessPoints = func(ctx context.Context, req *ups.LocatorRequest) (*ups.APIResponse, error) {
				return nil, ups.ParseError(tt.status, []byte(`{"response":{"errors":[{"code":"503","message":"Service Unavailable"}]}}`))
			}

			point, err := client.FindPickupPointByID(context.Background(), "U1", berlin)
			assert.Nil(t, point)
			require.Error(t, err)

			var shipperErr *shipper.ShipperError
			require.True(t, errors.As(err, &shipperErr))
			assert.Equal(t, tt.status, shipperErr.StatusCode)
		})
	}
}
