package ups

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

const (
	statusSuccess = "1"

	genericErrorCode    = "error"
	genericErrorMessage = "There was an unknown error calling the UPS API."

	cancelErrorCode    = "ups_error"
	cancelErrorMessage = "There was an error while cancelling the label"

	missingTrackingCode    = "missing_tracking_number"
	missingTrackingMessage = "UPS did not return a tracking number."
)

// ParseError maps a UPS error body onto a carrier error. The result always
// carries at least one entry.
func ParseError(status int, raw []byte) *shipper.ShipperError {
	body := gjson.ParseBytes(raw)

	var entries []shipper.ErrorEntry
	body.Get("response.errors").ForEach(func(_, e gjson.Result) bool {
		if entry, ok := errorEntry(e); ok {
			entries = append(entries, entry)
		}
		return true
	})

	if len(entries) == 0 {
		if entry, ok := errorEntry(body.Get("response")); ok {
			entries = append(entries, entry)
		}
	}

	err := shipper.NewShipperError(carrierName, genericErrorCode, genericErrorMessage).WithEntries(entries)
	if status > 0 {
		err.WithStatusCode(status)
	}
	if status == http.StatusTooManyRequests {
		err.WithRetryable(true)
	}
	return err
}

func errorEntry(e gjson.Result) (shipper.ErrorEntry, bool) {
	code := strings.TrimSpace(e.Get("code").String())
	msg := strings.TrimSpace(e.Get("message").String())
	if code == "" && msg == "" {
		return shipper.ErrorEntry{}, false
	}
	if code == "" {
		code = genericErrorCode
	}
	if msg == "" {
		msg = genericErrorMessage
	}
	return shipper.ErrorEntry{Code: code, Message: msg}, true
}

// ParseShipmentResponse extracts the booking from a ship response. A
// response without success status or tracking number is an error.
func ParseShipmentResponse(resp *APIResponse) (*shipper.Booking, error) {
	sr := resp.Body.Get("ShipmentResponse")
	if sr.Get("Response.ResponseStatus.Code").String() != statusSuccess {
		return nil, ParseError(resp.StatusCode, resp.Raw)
	}

	results := sr.Get("ShipmentResults")
	pkg := first(results.Get("PackageResults"))

	tracking := firstNonEmpty(
		results.Get("ShipmentIdentificationNumber").String(),
		pkg.Get("TrackingNumber").String(),
	)
	if tracking == "" {
		return nil, shipper.NewShipperError(carrierName, missingTrackingCode, missingTrackingMessage).
			WithStatusCode(resp.StatusCode)
	}

	booking := &shipper.Booking{
		TrackingNumber: tracking,
		Charges:        money(results.Get("ShipmentCharges.TotalCharges")),
		LabelFormat:    strings.ToUpper(firstNonEmpty(pkg.Get("ShippingLabel.ImageFormat.Code").String(), "GIF")),
		Forms:          make(map[string]shipper.Document),
	}

	if image := pkg.Get("ShippingLabel.GraphicImage").String(); image != "" {
		data, err := decodeImage(image)
		if err != nil {
			booking.DecodeErrors = append(booking.DecodeErrors,
				fmt.Sprintf("UPS returned an unreadable label image: %v", err))
		} else {
			booking.LabelImage = data
		}
	}

	forEach(results.Get("Form"), func(form gjson.Result) {
		image := form.Get("Image.GraphicImage").String()
		if image == "" {
			return
		}
		code := firstNonEmpty(form.Get("Code").String(), formTypeInvoice)
		data, err := decodeImage(image)
		if err != nil {
			booking.DecodeErrors = append(booking.DecodeErrors,
				fmt.Sprintf("UPS returned an unreadable form %s: %v", code, err))
			return
		}
		booking.Forms[code] = shipper.Document{
			Format: strings.ToUpper(form.Get("Image.ImageFormat.Code").String()),
			Data:   data,
		}
	})

	return booking, nil
}

// ParseVoidResponse reports whether a void request succeeded.
func ParseVoidResponse(resp *APIResponse) error {
	if resp.Body.Get("VoidShipmentResponse.Response.ResponseStatus.Code").String() == statusSuccess {
		return nil
	}
	return cancelError().WithStatusCode(resp.StatusCode)
}

func cancelError() *shipper.ShipperError {
	return shipper.NewShipperError(carrierName, cancelErrorCode, cancelErrorMessage)
}

// ParsePickupPoints maps locator drop locations onto pickup points.
func ParsePickupPoints(resp *APIResponse) []shipper.PickupPoint {
	var points []shipper.PickupPoint
	forEach(resp.Body.Get("LocatorResponse.SearchResults.DropLocation"), func(loc gjson.Result) {
		id := firstNonEmpty(
			loc.Get("AccessPointInformation.PublicAccessPointID").String(),
			loc.Get("LocationID").String(),
		)
		if id == "" {
			return
		}

		addr := loc.Get("AddressKeyFormat")
		lines := addr.Get("AddressLine")
		line1 := first(lines).String()
		line2 := ""
		if lines.IsArray() && len(lines.Array()) > 1 {
			line2 = lines.Array()[1].String()
		}

		name := addr.Get("ConsigneeName").String()
		distance, _ := decimal.NewFromString(loc.Get("Distance.Value").String())

		points = append(points, shipper.PickupPoint{
			ID:   id,
			Name: name,
			Address: shipper.Address{
				Company:     name,
				Line1:       line1,
				Line2:       line2,
				City:        addr.Get("PoliticalDivision2").String(),
				State:       addr.Get("PoliticalDivision1").String(),
				PostalCode:  addr.Get("PostcodePrimaryLow").String(),
				CountryCode: addr.Get("CountryCode").String(),
			},
			Latitude:     loc.Get("Geocode.Latitude").Float(),
			Longitude:    loc.Get("Geocode.Longitude").Float(),
			Distance:     distance,
			DistanceUnit: loc.Get("Distance.UnitOfMeasurement.Code").String(),
		})
	})
	return points
}

func money(charges gjson.Result) shipper.Money {
	amount, err := decimal.NewFromString(charges.Get("MonetaryValue").String())
	if err != nil {
		amount = decimal.Zero
	}
	return shipper.Money{Amount: amount, Currency: charges.Get("CurrencyCode").String()}
}

func decodeImage(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

// first returns the first element of an array, or the value itself. UPS
// returns single-element lists as plain objects.
func first(r gjson.Result) gjson.Result {
	if r.IsArray() {
		return r.Get("0")
	}
	return r
}

func forEach(r gjson.Result, fn func(gjson.Result)) {
	if !r.Exists() {
		return
	}
	if !r.IsArray() {
		fn(r)
		return
	}
	for _, item := range r.Array() {
		fn(item)
	}
}
