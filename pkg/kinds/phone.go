package kinds

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the country bias used to normalise numbers written without a calling code.
const DefaultRegion = "IT"

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{5,}\d`)

// ErrInvalidPhone is returned by NormalizePhone for numbers that cannot exist.
var ErrInvalidPhone = errors.New("invalid phone number")

// Phone is a normalised phone number.
type Phone struct {
	// International is the number in international format ("+39 02 1234 5678").
	International string
	// Prefix is the calling code with its plus sign ("+39").
	Prefix string
	// National is the national significant number, digits only.
	National string
}

// NormalizePhone parses raw with region as default country and formats it internationally.
func NormalizePhone(raw, region string) (Phone, error) {
	if region == "" {
		region = DefaultRegion
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return Phone{}, fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return Phone{}, ErrInvalidPhone
	}
	return Phone{
		International: phonenumbers.Format(num, phonenumbers.INTERNATIONAL),
		Prefix:        fmt.Sprintf("+%d", num.GetCountryCode()),
		National:      phonenumbers.GetNationalSignificantNumber(num),
	}, nil
}

// IsPhoneShaped reports whether the whole text reads as a phone number.
func IsPhoneShaped(text string) bool {
	text = strings.TrimSpace(text)
	loc := phonePattern.FindStringIndex(text)
	if loc == nil || loc[0] != 0 || loc[1] != len(text) {
		return false
	}
	return validPhoneCandidate(text)
}

func validPhoneCandidate(s string) bool {
	if datePattern.MatchString(s) {
		return false
	}
	n := countDigits(s)
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// PhoneDetector detects phone numbers: an optional leading plus and at least seven digits
// with separators. Date-shaped candidates are rejected.
func PhoneDetector() Detector {
	return DetectorFunc(func(text string) (Match, bool) {
		for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
			candidate := text[loc[0]:loc[1]]
			if !validPhoneCandidate(candidate) {
				continue
			}
			return Match{
				Value: domain.TextValue(domain.KindPhone, candidate),
				Span:  Span{Start: loc[0], End: loc[1]},
			}, true
		}
		return Match{}, false
	})
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
