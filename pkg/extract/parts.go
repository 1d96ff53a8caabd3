package extract

import (
	"regexp"
	"strings"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/kinds"
)

// partOrder is the priority used when a label names several parts ("street number").
var partOrder = []domain.Part{
	domain.PartPrefix,
	domain.PartDay, domain.PartMonth, domain.PartYear,
	domain.PartFirst, domain.PartLast,
	domain.PartPostal, domain.PartNumber, domain.PartStreet, domain.PartCity, domain.PartCountry,
}

var kindParts = map[domain.Kind][]domain.Part{
	domain.KindDate:    {domain.PartDay, domain.PartMonth, domain.PartYear},
	domain.KindName:    {domain.PartFirst, domain.PartLast},
	domain.KindAddress: {domain.PartStreet, domain.PartNumber, domain.PartCity, domain.PartPostal, domain.PartCountry},
	domain.KindPhone:   {domain.PartPrefix, domain.PartNumber},
}

// requiredParts lists what a composite outcome needs to be complete.
var requiredParts = map[domain.Kind][]domain.Part{
	domain.KindDate:    {domain.PartDay, domain.PartMonth, domain.PartYear},
	domain.KindName:    {domain.PartFirst, domain.PartLast},
	domain.KindAddress: {domain.PartStreet, domain.PartCity, domain.PartPostal, domain.PartCountry},
}

// PartsOf returns the canonical components a kind decomposes into, or nil for atomic kinds.
func PartsOf(kind domain.Kind) []domain.Part {
	return kindParts[kind]
}

var labelWords = regexp.MustCompile(`\pL+`)

// PartForLabel binds a sub node to a component of its parent kind by matching whole words of
// the sub's label and id against the locale keywords.
func PartForLabel(loc *kinds.Locale, parent domain.Kind, sub domain.Node) (domain.Part, bool) {
	allowed := kindParts[parent]
	if len(allowed) == 0 {
		return "", false
	}

	words := make(map[string]bool)
	for _, w := range labelWords.FindAllString(strings.ToLower(sub.Label+" "+sub.ID), -1) {
		words[w] = true
	}

	for _, p := range partOrder {
		if !containsPart(allowed, p) {
			continue
		}
		if words[string(p)] {
			return p, true
		}
		for _, kw := range loc.PartKeywords[p] {
			if words[kw] {
				return p, true
			}
		}
	}
	return "", false
}

func containsPart(parts []domain.Part, p domain.Part) bool {
	for _, q := range parts {
		if q == p {
			return true
		}
	}
	return false
}

// partsOfValue decomposes a detected value into component strings.
func partsOfValue(v domain.Value) map[domain.Part]string {
	out := make(map[domain.Part]string)
	switch {
	case v.Date != nil:
		out[domain.PartDay] = itoa(v.Date.Day)
		out[domain.PartMonth] = itoa(v.Date.Month)
		out[domain.PartYear] = itoa(v.Date.Year)
	case v.Name != nil:
		out[domain.PartFirst] = v.Name.First
		out[domain.PartLast] = v.Name.Last
	case v.Address != nil:
		out[domain.PartStreet] = v.Address.Street
		out[domain.PartNumber] = v.Address.Number
		out[domain.PartCity] = v.Address.City
		out[domain.PartPostal] = v.Address.Postal
		out[domain.PartCountry] = v.Address.Country
	}
	for p, s := range out {
		if strings.TrimSpace(s) == "" {
			delete(out, p)
		}
	}
	return out
}
