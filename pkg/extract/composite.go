package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/kinds"
)

// Outcome is the result of decomposing text for one kind.
type Outcome struct {
	// SubValues holds every component found, keyed by part.
	SubValues map[domain.Part]string
	// Value is the composed value. It is set for complete dates and for any non-empty
	// decomposition of the other kinds.
	Value domain.Value
	// IsComplete reports whether every required component was found.
	IsComplete bool
	// MissingSubs lists the required components not found, in canonical order.
	MissingSubs []domain.Part
}

// Composite splits text into the canonical components of a kind.
type Composite struct {
	locale *kinds.Locale
}

// NewComposite creates a composite extractor. A nil locale selects kinds.DefaultLocale.
func NewComposite(loc *kinds.Locale) *Composite {
	if loc == nil {
		loc = kinds.DefaultLocale()
	}
	return &Composite{locale: loc}
}

// Locale returns the tables the extractor reads.
func (c *Composite) Locale() *kinds.Locale { return c.locale }

// Apply decomposes text according to kind.
func (c *Composite) Apply(kind domain.Kind, text string) Outcome {
	text = strings.TrimSpace(text)
	switch kind {
	case domain.KindDate:
		return c.applyDate(text)
	case domain.KindName:
		return c.applyName(text)
	case domain.KindAddress:
		return c.applyAddress(text)
	default:
		out := Outcome{SubValues: map[domain.Part]string{}}
		if text != "" {
			out.Value = domain.TextValue(kind, text)
			out.IsComplete = true
		}
		return out
	}
}

var (
	yearPattern  = regexp.MustCompile(`\b\d{4}\b`)
	smallNumber  = regexp.MustCompile(`\b\d{1,2}\b`)
	letterTokens = regexp.MustCompile(`\pL+`)
)

func (c *Composite) applyDate(text string) Outcome {
	if d, _, ok := kinds.ParseNumericDate(text); ok {
		return finish(domain.KindDate, map[domain.Part]string{
			domain.PartDay:   itoa(d.Day),
			domain.PartMonth: itoa(d.Month),
			domain.PartYear:  itoa(d.Year),
		}, domain.DateOf(d.Day, d.Month, d.Year))
	}

	parts := make(map[domain.Part]string)
	rest := text

	if loc := yearPattern.FindStringIndex(rest); loc != nil {
		parts[domain.PartYear] = rest[loc[0]:loc[1]]
		rest = SubtractSpan(rest, kinds.Span{Start: loc[0], End: loc[1]})
	}

	for _, w := range letterTokens.FindAllString(rest, -1) {
		if m, ok := c.locale.MonthNumber(w); ok {
			parts[domain.PartMonth] = itoa(m)
			break
		}
	}

	for _, s := range smallNumber.FindAllString(rest, -1) {
		n, _ := strconv.Atoi(s)
		switch {
		case parts[domain.PartDay] == "" && n >= 1 && n <= 31:
			parts[domain.PartDay] = itoa(n)
		case parts[domain.PartMonth] == "" && n >= 1 && n <= 12:
			parts[domain.PartMonth] = itoa(n)
		}
	}

	var value domain.Value
	if v, ok := c.Compose(domain.KindDate, parts); ok {
		value = v
	}
	return finish(domain.KindDate, parts, value)
}

func (c *Composite) applyName(text string) Outcome {
	parts := make(map[domain.Part]string)
	tokens := strings.Fields(text)
	if len(tokens) > 0 {
		parts[domain.PartFirst] = tokens[0]
	}
	if len(tokens) > 1 {
		parts[domain.PartLast] = tokens[len(tokens)-1]
	}
	var value domain.Value
	if len(tokens) > 0 {
		value = domain.NameOf(parts[domain.PartFirst], parts[domain.PartLast])
	}
	return finish(domain.KindName, parts, value)
}

var (
	postalPattern = regexp.MustCompile(`\b\d{5}\b`)
	civicPattern  = regexp.MustCompile(`(?:^|\s)(\d+[A-Za-z]?(?:/\d+)?)(?:\s|$)`)
)

func (c *Composite) applyAddress(text string) Outcome {
	parts := make(map[domain.Part]string)
	rest := text

	if loc := postalPattern.FindStringIndex(rest); loc != nil {
		parts[domain.PartPostal] = rest[loc[0]:loc[1]]
		rest = SubtractSpan(rest, kinds.Span{Start: loc[0], End: loc[1]})
	}

	var segments []string
	for _, seg := range strings.Split(rest, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}

	// Country: a whole segment, or the trailing word of the last segment.
	for i := len(segments) - 1; i >= 0; i-- {
		if country, ok := c.locale.Country(segments[i]); ok {
			parts[domain.PartCountry] = country
			segments = append(segments[:i], segments[i+1:]...)
			break
		}
	}
	if parts[domain.PartCountry] == "" && len(segments) > 0 {
		last := segments[len(segments)-1]
		if i := strings.LastIndexFunc(last, func(r rune) bool { return r == ' ' }); i > 0 {
			if country, ok := c.locale.Country(last[i+1:]); ok {
				parts[domain.PartCountry] = country
				segments[len(segments)-1] = strings.TrimSpace(last[:i])
			}
		}
	}

	if len(segments) > 0 {
		street := segments[0]
		if m := civicPattern.FindStringSubmatchIndex(street); m != nil {
			parts[domain.PartNumber] = street[m[2]:m[3]]
			street = strings.TrimSpace(street[:m[2]] + " " + street[m[3]:])
		}
		if street != "" {
			parts[domain.PartStreet] = strings.Join(strings.Fields(street), " ")
		}
	}
	if len(segments) > 1 {
		parts[domain.PartCity] = segments[1]
	}

	var value domain.Value
	if len(parts) > 0 {
		value, _ = c.Compose(domain.KindAddress, parts)
	}
	return finish(domain.KindAddress, parts, value)
}

// Compose builds a kind's value from its components. For dates every component must parse
// and fall in range; month names are resolved through the locale.
func (c *Composite) Compose(kind domain.Kind, parts map[domain.Part]string) (domain.Value, bool) {
	switch kind {
	case domain.KindDate:
		day, okD := c.number(parts[domain.PartDay])
		month, okM := c.number(parts[domain.PartMonth])
		if !okM {
			month, okM = c.locale.MonthNumber(strings.TrimSpace(parts[domain.PartMonth]))
		}
		year, okY := c.number(parts[domain.PartYear])
		if !okD || !okM || !okY || day < 1 || day > 31 || month < 1 || month > 12 {
			return domain.Value{}, false
		}
		if year < 100 {
			year += 1900
		}
		return domain.DateOf(day, month, year), true
	case domain.KindName:
		first, last := strings.TrimSpace(parts[domain.PartFirst]), strings.TrimSpace(parts[domain.PartLast])
		if first == "" && last == "" {
			return domain.Value{}, false
		}
		return domain.NameOf(first, last), true
	case domain.KindAddress:
		a := domain.AddressValue{
			Street:  strings.TrimSpace(parts[domain.PartStreet]),
			Number:  strings.TrimSpace(parts[domain.PartNumber]),
			City:    strings.TrimSpace(parts[domain.PartCity]),
			Postal:  strings.TrimSpace(parts[domain.PartPostal]),
			Country: strings.TrimSpace(parts[domain.PartCountry]),
		}
		if a == (domain.AddressValue{}) {
			return domain.Value{}, false
		}
		return domain.AddressOf(a), true
	case domain.KindPhone:
		prefix, number := strings.TrimSpace(parts[domain.PartPrefix]), strings.TrimSpace(parts[domain.PartNumber])
		if number == "" {
			return domain.Value{}, false
		}
		return domain.TextValue(domain.KindPhone, strings.TrimSpace(prefix+" "+number)), true
	}
	return domain.Value{}, false
}

// ComposeMain recomposes a main node's value from the sub values held in memory.
// Subs that bind to no part of the main's kind are joined in declaration order.
func (c *Composite) ComposeMain(plan domain.Plan, main domain.Node, memory domain.Memory) (domain.Value, bool) {
	parts := make(map[domain.Part]string)
	var loose []string
	for _, sub := range plan.Subs(main) {
		v, ok := memory.Get(sub.ID)
		if !ok {
			continue
		}
		if p, bound := PartForLabel(c.locale, main.Kind, sub); bound {
			parts[p] = v.String()
			continue
		}
		loose = append(loose, v.String())
	}

	if len(loose) == 0 {
		if v, ok := c.Compose(main.Kind, parts); ok {
			return v, true
		}
	}

	var texts []string
	for _, sub := range plan.Subs(main) {
		if v, ok := memory.Get(sub.ID); ok {
			texts = append(texts, v.String())
		}
	}
	if len(texts) == 0 {
		return domain.Value{}, false
	}
	return domain.TextValue(main.Kind, strings.Join(texts, " ")), true
}

func (c *Composite) number(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

func finish(kind domain.Kind, parts map[domain.Part]string, value domain.Value) Outcome {
	out := Outcome{SubValues: parts, Value: value, IsComplete: true}
	for _, p := range requiredParts[kind] {
		if parts[p] == "" {
			out.IsComplete = false
			out.MissingSubs = append(out.MissingSubs, p)
		}
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
