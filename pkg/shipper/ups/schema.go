package ups

// ============================================================================
// Shipping API request types (UPS Shipping REST API v2409)
// ============================================================================

// LabelRequest is the body of POST /api/shipments/{version}/ship.
// Serialize it with Payload, which applies the UPS encoding rules.
type LabelRequest struct {
	ShipmentRequest ShipmentRequest `json:"ShipmentRequest"`
}

// ShipmentRequest wraps the shipment and how its label is printed.
type ShipmentRequest struct {
	Request            RequestInfo         `json:"Request"`
	Shipment           Shipment            `json:"Shipment"`
	LabelSpecification *LabelSpecification `json:"LabelSpecification,omitempty"`
}

// RequestInfo carries request options and the echoed customer context.
type RequestInfo struct {
	RequestOption        string                `json:"RequestOption,omitempty"`
	TransactionReference *TransactionReference `json:"TransactionReference,omitempty"`
}

// TransactionReference is echoed back in the response.
type TransactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

// Shipment is the UPS shipment container.
type Shipment struct {
	Description              string                    `json:"Description,omitempty"`
	ReturnService            *CodeDescription          `json:"ReturnService,omitempty"`
	Shipper                  Party                     `json:"Shipper"`
	ShipTo                   Party                     `json:"ShipTo"`
	ShipFrom                 Party                     `json:"ShipFrom"`
	AlternateDeliveryAddress *AlternateDeliveryAddress `json:"AlternateDeliveryAddress,omitempty"`
	ShipmentIndicationType   *CodeDescription          `json:"ShipmentIndicationType,omitempty"`
	PaymentInformation       PaymentInformation        `json:"PaymentInformation"`
	Service                  CodeDescription           `json:"Service"`
	ReferenceNumber          []ReferenceNumber         `json:"ReferenceNumber,omitempty"`
	ShipmentServiceOptions   *ShipmentServiceOptions   `json:"ShipmentServiceOptions,omitempty"`
	Package                  Package                   `json:"Package"`
}

// CodeDescription is the UPS {Code, Description} pair used all over the
// schema.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Party is a shipper, ship-from, ship-to or sold-to contact.
type Party struct {
	Name                    string  `json:"Name"`
	AttentionName           string  `json:"AttentionName,omitempty"`
	CompanyDisplayableName  string  `json:"CompanyDisplayableName,omitempty"`
	TaxIdentificationNumber string  `json:"TaxIdentificationNumber,omitempty"`
	Phone                   *Phone  `json:"Phone,omitempty"`
	ShipperNumber           string  `json:"ShipperNumber,omitempty"`
	EMailAddress            string  `json:"EMailAddress,omitempty"`
	Address                 Address `json:"Address"`
}

// Phone is a UPS phone number.
type Phone struct {
	Number string `json:"Number"`
}

// Address is a UPS postal address.
type Address struct {
	AddressLine                 []string `json:"AddressLine"`
	City                        string   `json:"City"`
	StateProvinceCode           string   `json:"StateProvinceCode,omitempty"`
	PostalCode                  string   `json:"PostalCode,omitempty"`
	CountryCode                 string   `json:"CountryCode"`
	ResidentialAddressIndicator string   `json:"ResidentialAddressIndicator,omitempty"`
}

// AlternateDeliveryAddress redirects the parcel to a UPS Access Point.
type AlternateDeliveryAddress struct {
	Name             string  `json:"Name"`
	AttentionName    string  `json:"AttentionName,omitempty"`
	UPSAccessPointID string  `json:"UPSAccessPointID"`
	Address          Address `json:"Address"`
}

// PaymentInformation lists who pays which charges.
type PaymentInformation struct {
	ShipmentCharge []ShipmentCharge `json:"ShipmentCharge"`
}

// ShipmentCharge bills one charge type to the shipper account.
type ShipmentCharge struct {
	Type        string       `json:"Type"`
	BillShipper *BillShipper `json:"BillShipper,omitempty"`
}

// BillShipper identifies the paying account.
type BillShipper struct {
	AccountNumber string `json:"AccountNumber"`
}

// ReferenceNumber is printed on the label.
type ReferenceNumber struct {
	Value string `json:"Value"`
}

// ShipmentServiceOptions holds additional services.
type ShipmentServiceOptions struct {
	Notification       []Notification      `json:"Notification,omitempty"`
	LabelDelivery      *LabelDelivery      `json:"LabelDelivery,omitempty"`
	InternationalForms *InternationalForms `json:"InternationalForms,omitempty"`
}

// Notification subscribes an e-mail address to a tracking event.
type Notification struct {
	NotificationCode string              `json:"NotificationCode"`
	EMail            NotificationEMail   `json:"EMail"`
	Locale           *NotificationLocale `json:"Locale,omitempty"`
}

// NotificationEMail lists notification recipients.
type NotificationEMail struct {
	EMailAddress []string `json:"EMailAddress"`
}

// NotificationLocale selects the notification language.
type NotificationLocale struct {
	Language string `json:"Language"`
	Dialect  string `json:"Dialect"`
}

// LabelDelivery sends the label by e-mail instead of returning the image.
type LabelDelivery struct {
	EMail *LabelDeliveryEMail `json:"EMail,omitempty"`
}

// LabelDeliveryEMail is the recipient of an electronic return label.
type LabelDeliveryEMail struct {
	EMailAddress string `json:"EMailAddress"`
}

// InternationalForms describes the commercial invoice.
type InternationalForms struct {
	FormType            string    `json:"FormType"`
	InvoiceNumber       string    `json:"InvoiceNumber,omitempty"`
	InvoiceDate         string    `json:"InvoiceDate,omitempty"` // YYYYMMDD
	PurchaseOrderNumber string    `json:"PurchaseOrderNumber,omitempty"`
	TermsOfShipment     string    `json:"TermsOfShipment,omitempty"`
	ReasonForExport     string    `json:"ReasonForExport,omitempty"`
	CurrencyCode        string    `json:"CurrencyCode"`
	Contacts            *Contacts `json:"Contacts,omitempty"`
	Product             []Product `json:"Product"`
}

// Contacts of the international forms.
type Contacts struct {
	SoldTo *Party `json:"SoldTo,omitempty"`
}

// Product is one line of the commercial invoice.
type Product struct {
	Description       string         `json:"Description"`
	Unit              ProductUnit    `json:"Unit"`
	CommodityCode     string         `json:"CommodityCode,omitempty"`
	OriginCountryCode string         `json:"OriginCountryCode,omitempty"`
	ProductWeight     *ProductWeight `json:"ProductWeight,omitempty"`
}

// ProductUnit is the quantity and unit value of a product line.
type ProductUnit struct {
	Number            int             `json:"Number"`
	Value             string          `json:"Value"`
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
}

// ProductWeight is the gross weight of a product line.
type ProductWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// Package is the single parcel of the shipment.
type Package struct {
	Description   string             `json:"Description,omitempty"`
	Packaging     CodeDescription    `json:"Packaging"`
	Dimensions    *PackageDimensions `json:"Dimensions,omitempty"`
	PackageWeight PackageWeight      `json:"PackageWeight"`
}

// PackageDimensions are whole units of UnitOfMeasurement.
type PackageDimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// PackageWeight is rounded up to the next half unit.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// LabelSpecification selects the label image format and stock.
type LabelSpecification struct {
	LabelImageFormat *CodeDescription `json:"LabelImageFormat,omitempty"`
	LabelStockSize   *LabelStockSize  `json:"LabelStockSize,omitempty"`
}

// LabelStockSize is in inches.
type LabelStockSize struct {
	Height string `json:"Height"`
	Width  string `json:"Width"`
}

// ============================================================================
// Locator API request types (UPS Locator REST API v3)
// ============================================================================

// LocatorRequest is the body of POST /api/locations/v3/search/availabilities/64.
type LocatorRequest struct {
	LocatorRequest LocatorBody `json:"LocatorRequest"`
}

// LocatorBody searches Access Points around an origin address.
type LocatorBody struct {
	Request                LocatorRequestInfo     `json:"Request"`
	OriginAddress          OriginAddress          `json:"OriginAddress"`
	Translate              Translate              `json:"Translate"`
	UnitOfMeasurement      CodeDescription        `json:"UnitOfMeasurement"`
	LocationSearchCriteria LocationSearchCriteria `json:"LocationSearchCriteria"`
}

// LocatorRequestInfo selects the locator action.
type LocatorRequestInfo struct {
	RequestAction string `json:"RequestAction"`
}

// OriginAddress is the search origin.
type OriginAddress struct {
	AddressKeyFormat AddressKeyFormat `json:"AddressKeyFormat"`
}

// AddressKeyFormat is the locator address format.
type AddressKeyFormat struct {
	ConsigneeName      string   `json:"ConsigneeName,omitempty"`
	AddressLine        []string `json:"AddressLine,omitempty"`
	PoliticalDivision2 string   `json:"PoliticalDivision2,omitempty"`
	PoliticalDivision1 string   `json:"PoliticalDivision1,omitempty"`
	PostcodePrimaryLow string   `json:"PostcodePrimaryLow,omitempty"`
	CountryCode        string   `json:"CountryCode"`
}

// Translate selects the response language.
type Translate struct {
	Locale string `json:"Locale"`
}

// LocationSearchCriteria limits the search.
type LocationSearchCriteria struct {
	AccessPointSearch AccessPointSearch `json:"AccessPointSearch"`
	MaximumListSize   string            `json:"MaximumListSize,omitempty"`
	SearchRadius      string            `json:"SearchRadius,omitempty"`
}

// AccessPointSearch restricts results to active Access Points, or to one.
type AccessPointSearch struct {
	AccessPointStatus   string `json:"AccessPointStatus,omitempty"`
	PublicAccessPointID string `json:"PublicAccessPointID,omitempty"`
}
