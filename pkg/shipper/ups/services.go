package ups

import "strings"

// Service identifiers a label may book.
const (
	ServiceNotification = "Notification"
)

// Notification codes.
const (
	NotificationShip       = "6"
	NotificationException  = "7"
	NotificationDelivery   = "8"
	NotificationPreAdvice  = "012"
	NotificationPickupDone = "013"
)

// Return service codes.
const (
	ReturnPrintAndMail         = "2"
	ReturnServiceOneAttempt    = "3"
	ReturnServiceThreeAttempts = "5"
	ReturnElectronicLabel      = "8"
	ReturnPrintLabel           = "9"
	ReturnExchangePrint        = "10"
)

const (
	defaultServiceCode   = "11"
	defaultReturnService = ReturnPrintLabel
	defaultTerms         = "DDP"
	defaultExportReason  = "SALE"
	packagingCustomer    = "02"
	formTypeInvoice      = "01"
	chargeTransportation = "01"
	chargeDutiesAndTaxes = "02"
	accessPointDelivery  = "01"
)

var shipmentTerms = map[string]bool{
	"CFR": true, "CIF": true, "CIP": true, "CPT": true, "DAF": true,
	"DDP": true, "DDU": true, "DEQ": true, "DES": true, "EXW": true,
	"FAS": true, "FCA": true, "FOB": true,
}

var exportReasons = map[string]bool{
	"SALE": true, "GIFT": true, "SAMPLE": true, "RETURN": true,
	"REPAIR": true, "INTERCOMPANYDATA": true,
}

var returnServices = map[string]bool{
	ReturnPrintAndMail:         true,
	ReturnServiceOneAttempt:    true,
	ReturnServiceThreeAttempts: true,
	ReturnElectronicLabel:      true,
	ReturnPrintLabel:           true,
	ReturnExchangePrint:        true,
}

// termsOfShipment validates incoterms against the UPS list.
func termsOfShipment(terms string) string {
	terms = strings.ToUpper(strings.TrimSpace(terms))
	if shipmentTerms[terms] {
		return terms
	}
	return defaultTerms
}

func reasonForExport(reason string) string {
	reason = strings.ToUpper(strings.TrimSpace(reason))
	if exportReasons[reason] {
		return reason
	}
	return defaultExportReason
}

func returnServiceCode(code string) string {
	if returnServices[code] {
		return code
	}
	return defaultReturnService
}

// serviceCode strips the internal product prefix, e.g. "ups_11" becomes "11".
func serviceCode(productID string) string {
	code := strings.TrimPrefix(productID, "ups_")
	if code == "" {
		return defaultServiceCode
	}
	return code
}

// notificationLocale is the language and dialect UPS uses for e-mails.
type notificationLocale struct {
	language string
	dialect  string
}

var notificationLocales = map[string]notificationLocale{
	"DE": {"DEU", "97"},
	"AT": {"DEU", "97"},
	"CH": {"DEU", "97"},
	"GB": {"ENG", "GB"},
	"IE": {"ENG", "GB"},
	"US": {"ENG", "US"},
	"CA": {"ENG", "CA"},
	"FR": {"FRA", "97"},
	"BE": {"NLD", "97"},
	"NL": {"NLD", "97"},
	"IT": {"ITA", "97"},
	"ES": {"SPA", "97"},
	"PL": {"POL", "97"},
	"DK": {"DAN", "97"},
	"SE": {"SWE", "97"},
	"FI": {"FIN", "97"},
	"PT": {"POR", "97"},
}

func localeFor(country string) notificationLocale {
	if l, ok := notificationLocales[strings.ToUpper(country)]; ok {
		return l
	}
	return notificationLocale{"ENG", "GB"}
}
