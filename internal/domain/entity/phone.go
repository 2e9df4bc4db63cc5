package entity

import "strings"

// Carrier identifies the mobile operator a phone number belongs to, derived
// from the number's prefix.
type Carrier string

const (
	CarrierXL   Carrier = "xl"
	CarrierAxis Carrier = "axis"
	CarrierIM3  Carrier = "im3"
)

// CountryCodePrefix is the mandatory international prefix for all accepted
// phone numbers (Indonesia, without the leading "+").
const CountryCodePrefix = "62"

// carrierPrefixes maps each allow-listed number prefix to its operator.
var carrierPrefixes = map[string]Carrier{
	"62817": CarrierXL, "62818": CarrierXL, "62819": CarrierXL,
	"62859": CarrierXL, "62877": CarrierXL, "62878": CarrierXL, "62879": CarrierXL,

	"62831": CarrierAxis, "62832": CarrierAxis, "62833": CarrierAxis, "62838": CarrierAxis,

	"62855": CarrierIM3, "62856": CarrierIM3, "62857": CarrierIM3, "62858": CarrierIM3,
	"62814": CarrierIM3, "62815": CarrierIM3, "62816": CarrierIM3,
}

// HasCountryCode reports whether the phone number carries the mandatory "62"
// country prefix.
func HasCountryCode(phone string) bool {
	return strings.HasPrefix(phone, CountryCodePrefix)
}

// ClassifyCarrier resolves a phone number to its mobile operator. The second
// return value is false when the number does not start with an allow-listed
// carrier prefix.
func ClassifyCarrier(phone string) (Carrier, bool) {
	for prefix, carrier := range carrierPrefixes {
		if strings.HasPrefix(phone, prefix) {
			return carrier, true
		}
	}

	return "", false
}
