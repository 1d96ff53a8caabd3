package domain

import (
	"fmt"
	"strings"
)

// Value is the tagged union stored in Memory. The payload matching Kind is set:
// Date for KindDate, Name for KindName, Address for KindAddress and Text for every other kind.
// Payloads are never mutated after construction, so Values may be copied freely.
type Value struct {
	Kind    Kind          `json:"kind"`
	Text    string        `json:"text,omitempty"`
	Date    *DateValue    `json:"date,omitempty"`
	Name    *NameValue    `json:"name,omitempty"`
	Address *AddressValue `json:"address,omitempty"`
}

// DateValue is a day/month/year triple. Ranges are checked by the extractors, calendar legality is not.
type DateValue struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NameValue splits a personal name.
type NameValue struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
}

// AddressValue is a postal address.
type AddressValue struct {
	Street  string `json:"street,omitempty"`
	Number  string `json:"number,omitempty"`
	City    string `json:"city,omitempty"`
	Postal  string `json:"postal,omitempty"`
	Country string `json:"country,omitempty"`
}

// TextValue builds a scalar value.
func TextValue(kind Kind, text string) Value {
	return Value{Kind: kind, Text: text}
}

// DateOf builds a date value.
func DateOf(day, month, year int) Value {
	return Value{Kind: KindDate, Date: &DateValue{Day: day, Month: month, Year: year}}
}

// NameOf builds a name value.
func NameOf(first, last string) Value {
	return Value{Kind: KindName, Name: &NameValue{First: first, Last: last}}
}

// AddressOf builds an address value.
func AddressOf(a AddressValue) Value {
	return Value{Kind: KindAddress, Address: &a}
}

// String returns the textual representation used for presence checks and prompts.
func (v Value) String() string {
	switch {
	case v.Date != nil:
		return fmt.Sprintf("%02d/%02d/%04d", v.Date.Day, v.Date.Month, v.Date.Year)
	case v.Name != nil:
		return strings.TrimSpace(v.Name.First + " " + v.Name.Last)
	case v.Address != nil:
		return v.Address.String()
	default:
		return v.Text
	}
}

// IsZero reports whether the value has no textual content.
func (v Value) IsZero() bool {
	return strings.TrimSpace(v.String()) == ""
}

func (a AddressValue) String() string {
	street := strings.TrimSpace(a.Street + " " + a.Number)
	city := strings.TrimSpace(a.Postal + " " + a.City)

	parts := make([]string, 0, 3)
	for _, p := range []string{street, city, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
