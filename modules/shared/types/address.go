package types

import (
	"regexp"
	"strings"
)

// ErrInvalidAddress is returned when a shipping address is incomplete.
var ErrInvalidAddress = NewError(KindValidation, "invalid_address", "Invalid shipping address")

var pinCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{1,11}$`)

// Address is a shipping address. All fields are required; updates replace
// the whole value.
type Address struct {
	street  string
	city    string
	state   string
	pinCode string
	country string
}

func NewAddress(street, city, state, pinCode, country string) (Address, error) {
	a := Address{
		street:  strings.TrimSpace(street),
		city:    strings.TrimSpace(city),
		state:   strings.TrimSpace(state),
		pinCode: strings.TrimSpace(pinCode),
		country: strings.TrimSpace(country),
	}
	if a.street == "" || a.city == "" || a.state == "" || a.country == "" {
		return Address{}, ErrInvalidAddress
	}
	if !pinCodeRegex.MatchString(a.pinCode) {
		return Address{}, ErrInvalidAddress
	}
	return a, nil
}

func (a Address) Street() string  { return a.street }
func (a Address) City() string    { return a.city }
func (a Address) State() string   { return a.state }
func (a Address) PinCode() string { return a.pinCode }
func (a Address) Country() string { return a.country }
func (a Address) IsZero() bool    { return a == Address{} }
