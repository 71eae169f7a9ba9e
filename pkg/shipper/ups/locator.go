package ups

import (
	"strconv"
	"strings"

	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

const (
	defaultPickupPointLimit = 10
	maxPickupPointLimit     = 50
	searchRadius            = "25"
	accessPointActive       = "01"
)

// BuildLocatorRequest searches Access Points near addr. A non-empty id
// restricts the search to that Access Point.
func BuildLocatorRequest(addr shipper.Address, limit int, id string) *LocatorRequest {
	if limit <= 0 {
		limit = defaultPickupPointLimit
	}
	if limit > maxPickupPointLimit {
		limit = maxPickupPointLimit
	}

	distanceUnit := "KM"
	if imperialCountries[strings.ToUpper(addr.CountryCode)] {
		distanceUnit = "MI"
	}

	return &LocatorRequest{
		LocatorRequest: LocatorBody{
			Request: LocatorRequestInfo{RequestAction: "Locator"},
			OriginAddress: OriginAddress{
				AddressKeyFormat: AddressKeyFormat{
					AddressLine:        addressLines(addr.Line1, addr.Line2),
					PoliticalDivision2: addr.City,
					PoliticalDivision1: addr.State,
					PostcodePrimaryLow: addr.PostalCode,
					CountryCode:        strings.ToUpper(addr.CountryCode),
				},
			},
			Translate:         Translate{Locale: "en_US"},
			UnitOfMeasurement: CodeDescription{Code: distanceUnit},
			LocationSearchCriteria: LocationSearchCriteria{
				AccessPointSearch: AccessPointSearch{
					AccessPointStatus:   accessPointActive,
					PublicAccessPointID: id,
				},
				MaximumListSize: strconv.Itoa(limit),
				SearchRadius:    searchRadius,
			},
		},
	}
}
