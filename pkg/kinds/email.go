package kinds

import (
	"regexp"

	"github.com/aretw0/slotfill/pkg/domain"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)

// EmailDetector detects e-mail addresses.
func EmailDetector() Detector {
	return DetectorFunc(func(text string) (Match, bool) {
		loc := emailPattern.FindStringIndex(text)
		if loc == nil {
			return Match{}, false
		}
		return Match{
			Value: domain.TextValue(domain.KindEmail, text[loc[0]:loc[1]]),
			Span:  Span{Start: loc[0], End: loc[1]},
		}, true
	})
}
