package shipper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

func TestShipment_Destination(t *testing.T) {
	tests := []struct {
		from, to      string
		domestic      bool
		international bool
	}{
		{"DE", "DE", true, false},
		{"de", "DE", true, false},
		{"DE", "AT", false, false},
		{"DE", "CH", false, true},
		{"US", "CA", false, true},
		{"GB", "FR", false, true},
	}

	for _, tt := range tests {
		s := &shipper.Shipment{
			Sender:   shipper.Address{CountryCode: tt.from},
			Receiver: shipper.Address{CountryCode: tt.to},
		}
		assert.Equal(t, tt.domestic, s.IsDomestic(), "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.international, s.IsInternational(), "%s -> %s", tt.from, tt.to)
	}
}

func TestAddress_Names(t *testing.T) {
	a := shipper.Address{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", a.FullName())
	assert.Equal(t, "Jane Doe", a.DisplayName())

	a.Company = "Acme"
	assert.Equal(t, "Acme", a.DisplayName())

	assert.Equal(t, "Doe", shipper.Address{LastName: "Doe"}.FullName())
}

func TestLabel_Services(t *testing.T) {
	label := &shipper.Label{
		Type:        shipper.ShipmentReturn,
		Services:    []string{"Notification"},
		ServiceMeta: map[string]string{"Notification_email": "a@example.com"},
	}

	assert.True(t, label.IsReturn())
	assert.True(t, label.HasService("Notification"))
	assert.False(t, label.HasService("AdultSignature"))
	assert.Equal(t, "a@example.com", label.ServiceValue("Notification", "email"))
	assert.Empty(t, label.ServiceValue("Notification", "phone"))
	assert.Empty(t, (&shipper.Label{}).ServiceValue("Notification", "email"))
}

func TestShipment_HasPickupPoint(t *testing.T) {
	s := &shipper.Shipment{}
	assert.False(t, s.HasPickupPoint())

	s.PickupPoint = &shipper.PickupPointRef{}
	assert.False(t, s.HasPickupPoint())

	s.PickupPoint.ID = "U1"
	assert.True(t, s.HasPickupPoint())
}
