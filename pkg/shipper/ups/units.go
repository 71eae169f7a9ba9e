package ups

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Units of measurement as UPS expects them.
const (
	UnitCM  = "CM"
	UnitIN  = "IN"
	UnitKGS = "KGS"
	UnitLBS = "LBS"
)

var (
	cmPerInch = decimal.RequireFromString("2.54")
	lbsPerKg  = decimal.RequireFromString("2.20462262185")
	two       = decimal.NewFromInt(2)
)

// imperialCountries ship in inches and pounds.
var imperialCountries = map[string]bool{
	"US": true,
}

// DimensionUnit returns the dimension unit UPS expects for a sender country.
func DimensionUnit(country string) string {
	if imperialCountries[strings.ToUpper(country)] {
		return UnitIN
	}
	return UnitCM
}

// WeightUnit returns the weight unit UPS expects for a sender country.
func WeightUnit(country string) string {
	if imperialCountries[strings.ToUpper(country)] {
		return UnitLBS
	}
	return UnitKGS
}

// ConvertDimension converts a length and rounds it up to the next integer.
func ConvertDimension(value float64, from, to string) decimal.Decimal {
	return convertLength(decimal.NewFromFloat(value), from, to).Ceil()
}

// ConvertWeight converts a weight and rounds it up to the next 0.5.
func ConvertWeight(value float64, from, to string) decimal.Decimal {
	return convertMass(decimal.NewFromFloat(value), from, to).Mul(two).Ceil().Div(two)
}

func convertLength(v decimal.Decimal, from, to string) decimal.Decimal {
	from, to = normalizeUnit(from), normalizeUnit(to)
	switch {
	case from == to:
		return v
	case from == UnitCM && to == UnitIN:
		return v.Div(cmPerInch)
	case from == UnitIN && to == UnitCM:
		return v.Mul(cmPerInch)
	}
	return v
}

func convertMass(v decimal.Decimal, from, to string) decimal.Decimal {
	from, to = normalizeUnit(from), normalizeUnit(to)
	switch {
	case from == to:
		return v
	case from == UnitKGS && to == UnitLBS:
		return v.Mul(lbsPerKg)
	case from == UnitLBS && to == UnitKGS:
		return v.Div(lbsPerKg)
	}
	return v
}

func normalizeUnit(unit string) string {
	switch strings.ToUpper(unit) {
	case "CM":
		return UnitCM
	case "IN", "INCH":
		return UnitIN
	case "KG", "KGS":
		return UnitKGS
	case "LB", "LBS":
		return UnitLBS
	}
	return strings.ToUpper(unit)
}
