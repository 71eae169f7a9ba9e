package mock_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/shipper/mock"
)

var _ shipper.Shipper = (*mock.Client)(nil)

func TestClient_GetLabel(t *testing.T) {
	c := mock.New("ups")

	artifact, err := c.GetLabel(context.Background(), &shipper.Label{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(artifact.TrackingNumber, "1Zups"))
	assert.Equal(t, artifact.TrackingNumber, artifact.Booking.TrackingNumber)
	assert.True(t, strings.HasPrefix(string(artifact.PrimaryFile), "%PDF"))
	assert.Equal(t, "EUR", artifact.Charges.Currency)
}

func TestClient_CancelLabel(t *testing.T) {
	c := mock.New("ups")
	ctx := context.Background()

	require.NoError(t, c.CancelLabel(ctx, &shipper.Label{TrackingNumber: "1Z1"}))
	assert.Error(t, c.CancelLabel(ctx, &shipper.Label{}))
	assert.Equal(t, int64(1), c.Cancelled())
}

func TestClient_PickupPoints(t *testing.T) {
	c := mock.New("ups")
	ctx := context.Background()
	addr := shipper.Address{City: "Berlin", PostalCode: "10115", CountryCode: "DE"}

	points, err := c.FindPickupPoints(ctx, addr, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Berlin", points[0].Address.City)

	point, err := c.FindPickupPointByID(ctx, "ups-pp-3", addr)
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, "ups-pp-3", point.ID)

	point, err = c.FindPickupPointByID(ctx, "unknown", addr)
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestClient_TestConnection(t *testing.T) {
	c := mock.New("ups")
	assert.True(t, c.TestConnection(context.Background()))

	c.Connected = false
	assert.False(t, c.TestConnection(context.Background()))
}
