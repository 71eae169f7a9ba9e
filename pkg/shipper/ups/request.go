package ups

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

// ErrMissingCustomsData is returned when an international shipment has no
// customs declaration. The caller has to provide one before booking.
var ErrMissingCustomsData = errors.New("ups: international shipment without customs data")

// ErrMissingShipment is returned for a label that is not attached to a
// shipment.
var ErrMissingShipment = errors.New("ups: label has no shipment")

// DefaultReferences are used when a label does not carry its own.
var DefaultReferences = []string{"Shipment {shipment_number}", "Order {order_number}"}

const maxReferences = 2

// Policy lets the surrounding application adjust what is transmitted.
type Policy interface {
	// TransmitCustomerPhone reports whether the receiver phone may be sent
	// for domestic shipments. International shipments always send it.
	TransmitCustomerPhone(label *shipper.Label) bool

	// TransmitCustomerEmail reports whether the receiver e-mail may be sent.
	TransmitCustomerEmail(label *shipper.Label) bool

	// MutateRequest is called with the finished request right before it is
	// serialized.
	MutateRequest(label *shipper.Label, req *LabelRequest)
}

// DefaultPolicy transmits as little customer data as possible.
type DefaultPolicy struct {
	CustomerPhone bool
	CustomerEmail bool
}

// TransmitCustomerPhone implements Policy.
func (p DefaultPolicy) TransmitCustomerPhone(*shipper.Label) bool { return p.CustomerPhone }

// TransmitCustomerEmail implements Policy.
func (p DefaultPolicy) TransmitCustomerEmail(*shipper.Label) bool { return p.CustomerEmail }

// MutateRequest implements Policy.
func (DefaultPolicy) MutateRequest(*shipper.Label, *LabelRequest) {}

// BuildRequest maps a label onto the UPS shipment schema. It does not
// perform I/O.
func BuildRequest(label *shipper.Label, cfg Config, policy Policy) (*LabelRequest, error) {
	if label == nil || label.Shipment == nil {
		return nil, ErrMissingShipment
	}
	if policy == nil {
		policy = DefaultPolicy{}
	}

	s := label.Shipment
	international := s.IsInternational()
	if international && (s.Customs == nil || len(s.Customs.Items) == 0) {
		return nil, ErrMissingCustomsData
	}

	description := ""
	if s.Customs != nil {
		description = s.Customs.ExportTypeDescription
	}

	shipperParty := senderParty(s.Sender, cfg.AccountNumber)
	shipFrom := shipperParty
	shipFrom.ShipperNumber = ""

	shipment := Shipment{
		Description: LimitLength(description, maxDescriptionLength),
		Shipper:     shipperParty,
		ShipFrom:    shipFrom,
		ShipTo:      receiverParty(label, policy),
		PaymentInformation: PaymentInformation{
			ShipmentCharge: []ShipmentCharge{{
				Type:        chargeTransportation,
				BillShipper: &BillShipper{AccountNumber: cfg.AccountNumber},
			}},
		},
		Service:         CodeDescription{Code: serviceCode(label.ProductID)},
		ReferenceNumber: references(label),
		Package:         buildPackage(label, description),
	}

	options := &ShipmentServiceOptions{}
	labelSpec := &LabelSpecification{
		LabelImageFormat: &CodeDescription{Code: "GIF"},
		LabelStockSize:   &LabelStockSize{Height: "6", Width: "4"},
	}

	if international {
		terms := termsOfShipment(firstNonEmpty(label.Incoterms, s.Incoterms))
		options.InternationalForms = internationalForms(label, terms)

		if terms == "DDP" {
			shipment.PaymentInformation.ShipmentCharge = append(shipment.PaymentInformation.ShipmentCharge, ShipmentCharge{
				Type:        chargeDutiesAndTaxes,
				BillShipper: &BillShipper{AccountNumber: cfg.AccountNumber},
			})
		}
	}

	locale := localeFor(s.Receiver.CountryCode)

	if label.HasService(ServiceNotification) {
		email := firstNonEmpty(label.ServiceValue(ServiceNotification, "email"), s.Receiver.Email)
		if email != "" {
			for _, code := range []string{NotificationShip, NotificationException, NotificationDelivery} {
				options.Notification = append(options.Notification, notification(code, email, locale))
			}
		}
	}

	if s.HasPickupPoint() && !label.IsReturn() {
		shipment.ShipmentIndicationType = &CodeDescription{Code: accessPointDelivery}
		shipment.AlternateDeliveryAddress = &AlternateDeliveryAddress{
			Name:             LimitLength(s.Receiver.DisplayName(), maxNameLength),
			AttentionName:    LimitLength(s.Receiver.FullName(), maxNameLength),
			UPSAccessPointID: s.PickupPoint.ID,
			Address:          toAddress(s.Receiver),
		}

		email := firstNonEmpty(label.ServiceValue(ServiceNotification, "email"), s.Receiver.Email)
		if email != "" {
			options.Notification = append(options.Notification,
				notification(NotificationPreAdvice, email, locale),
				notification(NotificationPickupDone, email, locale),
			)
		}
	}

	if label.IsReturn() {
		code := returnServiceCode(label.ReturnService)
		shipment.ReturnService = &CodeDescription{Code: code}

		if code == ReturnElectronicLabel {
			labelSpec.LabelImageFormat = nil
			options.LabelDelivery = &LabelDelivery{
				EMail: &LabelDeliveryEMail{EMailAddress: LimitLength(s.Sender.Email, maxEmailLength)},
			}
		}
	}

	if len(options.Notification) > 0 || options.LabelDelivery != nil || options.InternationalForms != nil {
		shipment.ShipmentServiceOptions = options
	}

	req := &LabelRequest{
		ShipmentRequest: ShipmentRequest{
			Request: RequestInfo{
				RequestOption:        "nonvalidate",
				TransactionReference: &TransactionReference{CustomerContext: s.Number},
			},
			Shipment:           shipment,
			LabelSpecification: labelSpec,
		},
	}

	policy.MutateRequest(label, req)
	return req, nil
}

func senderParty(a shipper.Address, accountNumber string) Party {
	p := Party{
		Name:                    LimitLength(a.DisplayName(), maxNameLength),
		AttentionName:           LimitLength(a.FullName(), maxNameLength),
		CompanyDisplayableName:  LimitLength(a.Company, maxNameLength),
		TaxIdentificationNumber: LimitLength(a.CustomsReferenceNumber, maxTaxIDLength),
		EMailAddress:            LimitLength(a.Email, maxEmailLength),
		ShipperNumber:           accountNumber,
		Address:                 toAddress(a),
	}
	if phone := formatPhone(a.Phone); phone != "" {
		p.Phone = &Phone{Number: LimitLength(phone, maxPhoneLength)}
	}
	return p
}

func receiverParty(label *shipper.Label, policy Policy) Party {
	s := label.Shipment
	a := s.Receiver

	p := Party{
		Name:                    LimitLength(a.DisplayName(), maxNameLength),
		AttentionName:           LimitLength(a.FullName(), maxNameLength),
		TaxIdentificationNumber: LimitLength(a.CustomsReferenceNumber, maxTaxIDLength),
		Address:                 toAddress(a),
	}
	if a.Company == "" {
		p.Address.ResidentialAddressIndicator = "yes"
	}

	if !s.IsDomestic() || policy.TransmitCustomerPhone(label) {
		if phone := formatPhone(a.Phone); phone != "" {
			p.Phone = &Phone{Number: LimitLength(phone, maxPhoneLength)}
		}
	}
	if policy.TransmitCustomerEmail(label) {
		p.EMailAddress = LimitLength(a.Email, maxEmailLength)
	}
	return p
}

func toAddress(a shipper.Address) Address {
	return Address{
		AddressLine:       addressLines(a.Line1, a.Line2),
		City:              LimitLength(a.City, maxCityLength),
		StateProvinceCode: a.State,
		PostalCode:        LimitLength(a.PostalCode, maxPostalCodeLength),
		CountryCode:       strings.ToUpper(a.CountryCode),
	}
}

func buildPackage(label *shipper.Label, description string) Package {
	s := label.Shipment
	country := s.Sender.CountryCode

	weight := label.Weight
	if weight <= 0 {
		weight = s.Weight
	}
	dims := label.Dimensions
	if dims == (shipper.Dimensions{}) {
		dims = s.Dimensions
	}

	dimUnit := DimensionUnit(country)
	weightUnit := WeightUnit(country)

	pkg := Package{
		Description: LimitLength(description, maxProductDescriptionLength),
		Packaging:   CodeDescription{Code: packagingCustomer},
		PackageWeight: PackageWeight{
			UnitOfMeasurement: CodeDescription{Code: weightUnit},
			Weight:            ConvertWeight(weight, UnitKGS, weightUnit).String(),
		},
	}

	if dims.Length > 0 || dims.Width > 0 || dims.Height > 0 {
		pkg.Dimensions = &PackageDimensions{
			UnitOfMeasurement: CodeDescription{Code: dimUnit},
			Length:            ConvertDimension(dims.Length, UnitCM, dimUnit).String(),
			Width:             ConvertDimension(dims.Width, UnitCM, dimUnit).String(),
			Height:            ConvertDimension(dims.Height, UnitCM, dimUnit).String(),
		}
	}
	return pkg
}

func internationalForms(label *shipper.Label, terms string) *InternationalForms {
	s := label.Shipment
	customs := s.Customs
	weightUnit := WeightUnit(s.Sender.CountryCode)

	forms := &InternationalForms{
		FormType:            formTypeInvoice,
		InvoiceNumber:       firstNonEmpty(customs.InvoiceNumber, s.Number),
		PurchaseOrderNumber: s.OrderNumber,
		TermsOfShipment:     terms,
		ReasonForExport:     reasonForExport(label.ExportReason),
		CurrencyCode:        customs.Currency,
		Product:             make([]Product, 0, len(customs.Items)),
	}
	if !customs.InvoiceDate.IsZero() {
		forms.InvoiceDate = customs.InvoiceDate.Format("20060102")
	}

	soldTo := receiverParty(label, DefaultPolicy{CustomerPhone: true})
	soldTo.Address.ResidentialAddressIndicator = ""
	forms.Contacts = &Contacts{SoldTo: &soldTo}

	for _, item := range customs.Items {
		p := Product{
			Description: LimitLength(item.Description, maxProductDescriptionLength),
			Unit: ProductUnit{
				Number:            item.Quantity,
				Value:             item.SingleValue.String(),
				UnitOfMeasurement: CodeDescription{Code: "PCS"},
			},
			CommodityCode:     item.TariffNumber,
			OriginCountryCode: item.OriginCountry,
		}
		if item.GrossWeightKG > 0 {
			p.ProductWeight = &ProductWeight{
				UnitOfMeasurement: CodeDescription{Code: weightUnit},
				Weight:            productWeight(item.GrossWeightKG, weightUnit),
			}
		}
		forms.Product = append(forms.Product, p)
	}
	return forms
}

// productWeight keeps one decimal; UPS rejects a zero product weight.
func productWeight(kg float64, unit string) string {
	w := convertMass(decimal.NewFromFloat(kg), UnitKGS, unit).RoundCeil(1)
	return w.StringFixed(1)
}

func notification(code, email string, locale notificationLocale) Notification {
	return Notification{
		NotificationCode: code,
		EMail:            NotificationEMail{EMailAddress: []string{LimitLength(email, maxEmailLength)}},
		Locale:           &NotificationLocale{Language: locale.language, Dialect: locale.dialect},
	}
}

func references(label *shipper.Label) []ReferenceNumber {
	s := label.Shipment
	templates := label.References
	if len(templates) == 0 {
		templates = DefaultReferences
	}

	replacer := strings.NewReplacer(
		"{shipment_number}", s.Number,
		"{order_number}", s.OrderNumber,
	)

	var refs []ReferenceNumber
	for _, tpl := range templates {
		if len(refs) == maxReferences {
			break
		}
		if strings.Contains(tpl, "{order_number}") && s.OrderNumber == "" {
			continue
		}
		if strings.Contains(tpl, "{shipment_number}") && s.Number == "" {
			continue
		}
		value := strings.TrimSpace(replacer.Replace(tpl))
		if value == "" {
			continue
		}
		refs = append(refs, ReferenceNumber{Value: LimitLength(value, maxReferenceLength)})
	}
	return refs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
