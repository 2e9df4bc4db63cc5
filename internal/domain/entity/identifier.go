package entity

import (
	"net/mail"
	"regexp"
)

// IdentifierKind classifies what a login identifier looks like before the
// store is consulted. The classification deliberately says nothing about
// whether an account exists.
type IdentifierKind string

const (
	IdentifierEmail   IdentifierKind = "email"
	IdentifierPhone   IdentifierKind = "phone"
	IdentifierUnknown IdentifierKind = "unknown"
)

// phonePattern matches the accepted phone shape: country code "62" followed
// by 8 to 13 digits.
var phonePattern = regexp.MustCompile(`^62[0-9]{8,13}$`)

// ClassifyIdentifier decides whether a raw login identifier is an email
// address or a phone number. Anything that matches neither shape is Unknown
// and must be rejected without hinting at which form was expected.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if phonePattern.MatchString(identifier) {
		return IdentifierPhone
	}

	if addr, err := mail.ParseAddress(identifier); err == nil && addr.Address == identifier {
		return IdentifierEmail
	}

	return IdentifierUnknown
}

// ValidPhoneShape reports whether the string matches the accepted phone
// pattern, ignoring the carrier allow-list.
func ValidPhoneShape(phone string) bool {
	return phonePattern.MatchString(phone)
}
