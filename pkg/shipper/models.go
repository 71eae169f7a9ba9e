package shipper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentType distinguishes outbound shipments from customer returns.
type ShipmentType string

const (
	ShipmentOutbound ShipmentType = "outbound"
	ShipmentReturn   ShipmentType = "return"
)

// Address represents a shipping address together with its contact.
type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Company     string `json:"company,omitempty"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"` // e.g., "ON", "NY"
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"` // ISO 3166-1 alpha-2, e.g., "DE", "US"
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`

	// CustomsReferenceNumber is the EORI / VAT / tax id used for customs.
	CustomsReferenceNumber string `json:"customs_reference_number,omitempty"`
}

// FullName returns the formatted contact name.
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// DisplayName returns the company if present, else the contact name.
func (a Address) DisplayName() string {
	if a.Company != "" {
		return a.Company
	}
	return a.FullName()
}

// Dimensions of a package in centimeters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Money represents a monetary amount.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CustomsItem is a single line of a customs declaration.
type CustomsItem struct {
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	SingleValue   decimal.Decimal `json:"single_value"`
	Value         decimal.Decimal `json:"value"`
	TariffNumber  string          `json:"tariff_number,omitempty"`
	OriginCountry string          `json:"origin_country,omitempty"`
	GrossWeightKG float64         `json:"gross_weight_kg"`
}

// CustomsData holds the customs declaration for international shipments.
type CustomsData struct {
	Items                 []CustomsItem `json:"items"`
	Currency              string        `json:"currency"`
	ExportTypeDescription string        `json:"export_type_description,omitempty"`
	InvoiceNumber         string        `json:"invoice_number,omitempty"`
	InvoiceDate           time.Time     `json:"invoice_date,omitempty"`
}

// PickupPointRef references a carrier pickup point (parcel shop, locker)
// the receiver picks the parcel up from.
type PickupPointRef struct {
	ID string `json:"id"`
}

// Shipment is owned by the surrounding application; carriers only read it.
type Shipment struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	OrderNumber string          `json:"order_number,omitempty"`
	Type        ShipmentType    `json:"type"`
	Sender      Address         `json:"sender"`
	Receiver    Address         `json:"receiver"`
	Weight      float64         `json:"weight"` // kg
	Dimensions  Dimensions      `json:"dimensions"`
	Customs     *CustomsData    `json:"customs,omitempty"`
	PickupPoint *PickupPointRef `json:"pickup_point,omitempty"`
	Incoterms   string          `json:"incoterms,omitempty"`
}

// euCountries is the EU customs union. Shipments between members need no
// customs declaration.
var euCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "CY": true, "CZ": true, "DE": true,
	"DK": true, "EE": true, "ES": true, "FI": true, "FR": true, "GR": true,
	"HR": true, "HU": true, "IE": true, "IT": true, "LT": true, "LU": true,
	"LV": true, "MC": true, "MT": true, "NL": true, "PL": true, "PT": true,
	"RO": true, "SE": true, "SI": true, "SK": true,
}

// IsDomestic reports whether sender and receiver are in the same country.
func (s *Shipment) IsDomestic() bool {
	return strings.EqualFold(s.Sender.CountryCode, s.Receiver.CountryCode)
}

// IsInternational reports whether the shipment crosses a customs border.
func (s *Shipment) IsInternational() bool {
	if s.IsDomestic() {
		return false
	}
	from := strings.ToUpper(s.Sender.CountryCode)
	to := strings.ToUpper(s.Receiver.CountryCode)
	return !(euCountries[from] && euCountries[to])
}

// HasPickupPoint reports whether the receiver collects the parcel from a
// pickup point.
func (s *Shipment) HasPickupPoint() bool {
	return s.PickupPoint != nil && s.PickupPoint.ID != ""
}

// Label is a single label booked (or to be booked) for a shipment.
type Label struct {
	Shipment *Shipment    `json:"shipment"`
	Type     ShipmentType `json:"type"`

	// ProductID is the carrier service code, e.g. "11" for UPS Standard.
	ProductID string `json:"product_id"`

	// Services lists the additional services booked with the label.
	Services []string `json:"services,omitempty"`

	// ServiceMeta carries per-service values keyed "<service>_<field>",
	// e.g. "Notification_email".
	ServiceMeta map[string]string `json:"service_meta,omitempty"`

	Weight     float64    `json:"weight"` // kg
	Dimensions Dimensions `json:"dimensions"`

	ReturnService string   `json:"return_service,omitempty"`
	Incoterms     string   `json:"incoterms,omitempty"`
	ExportReason  string   `json:"export_reason,omitempty"`
	References    []string `json:"references,omitempty"`

	// TrackingNumber is set once the label has been booked.
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// IsReturn reports whether this is a return label.
func (l *Label) IsReturn() bool {
	return l.Type == ShipmentReturn
}

// HasService reports whether the given service is booked.
func (l *Label) HasService(id string) bool {
	for _, s := range l.Services {
		if s == id {
			return true
		}
	}
	return false
}

// ServiceValue returns a per-service meta value.
func (l *Label) ServiceValue(service, field string) string {
	if l.ServiceMeta == nil {
		return ""
	}
	return l.ServiceMeta[service+"_"+field]
}

// Booking is the raw carrier-side result of a successful label call.
type Booking struct {
	TrackingNumber string
	Charges        Money

	// LabelImage is the decoded carrier label image.
	LabelImage  []byte
	LabelFormat string // e.g. "GIF", "PNG", "PDF"

	// Forms holds ancillary documents (e.g. commercial invoice) keyed by
	// carrier form code.
	Forms map[string]Document

	// DecodeErrors lists carrier documents that were returned but could not
	// be decoded.
	DecodeErrors []string
}

// Document is a carrier-provided file.
type Document struct {
	Format string
	Data   []byte
}

// LabelArtifact is the print-ready output of a successful label call.
type LabelArtifact struct {
	TrackingNumber string
	Charges        Money

	// PrimaryFile is the merged, print-ready PDF.
	PrimaryFile []byte

	// SupplementaryFiles holds documents that could not be merged.
	SupplementaryFiles map[string][]byte

	// Booking keeps the raw carrier images so the artifact can be rebuilt
	// without booking again.
	Booking *Booking
}

// PickupPoint is a carrier location a receiver may collect parcels from.
type PickupPoint struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Address      Address         `json:"address"`
	Latitude     float64         `json:"latitude,omitempty"`
	Longitude    float64         `json:"longitude,omitempty"`
	Distance     decimal.Decimal `json:"distance"`
	DistanceUnit string          `json:"distance_unit,omitempty"`
}
