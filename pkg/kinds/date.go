package kinds

import (
	"regexp"
	"strconv"

	"github.com/aretw0/slotfill/pkg/domain"
)

// datePattern matches D/M/Y and D-M-Y with a 2- or 4-digit year.
var datePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)

// ParseNumericDate reads the first range-valid D/M/Y or D-M-Y date in text.
// Days are checked against 1..31 and months against 1..12; calendar legality is not checked.
// Two-digit years are read as 19xx.
func ParseNumericDate(text string) (domain.DateValue, Span, bool) {
	for _, loc := range datePattern.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[loc[2]:loc[3]])
		month, _ := strconv.Atoi(text[loc[4]:loc[5]])
		yearText := text[loc[6]:loc[7]]
		year, _ := strconv.Atoi(yearText)
		if len(yearText) == 2 {
			year += 1900
		}
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		return domain.DateValue{Day: day, Month: month, Year: year}, Span{Start: loc[0], End: loc[1]}, true
	}
	return domain.DateValue{}, Span{}, false
}

// DateDetector detects numeric dates.
func DateDetector() Detector {
	return DetectorFunc(func(text string) (Match, bool) {
		d, span, ok := ParseNumericDate(text)
		if !ok {
			return Match{}, false
		}
		return Match{Value: domain.DateOf(d.Day, d.Month, d.Year), Span: span}, true
	})
}
