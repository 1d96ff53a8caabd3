package kinds

import (
	"strings"
	"unicode"

	"github.com/aretw0/slotfill/pkg/domain"
)

// Locale groups the language-dependent data tables read by the heuristics.
// Every entry is lower-case. Tables from several languages can be combined with Merge.
type Locale struct {
	// Months maps full and abbreviated month names to 1..12.
	Months map[string]int
	// StopWords are never taken as a name token.
	StopWords map[string]bool
	// NamePhrases introduce an explicit name ("my name is").
	NamePhrases []string
	// Countries maps country keywords to the canonical country name stored in memory.
	Countries map[string]string
	// Affirmatives and Negatives answer a confirmation prompt.
	Affirmatives []string
	Negatives    []string
	// Corrections are lead-ins stripped from a sub answer ("I meant", "anzi").
	Corrections []string
	// PartKeywords bind a sub node label or id to the component of its parent it holds.
	PartKeywords map[domain.Part][]string
}

// English returns the English tables.
func English() *Locale {
	return &Locale{
		Months: map[string]int{
			"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
			"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
			"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
			"sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
		},
		StopWords: set(
			"i", "i'm", "im", "i've", "me", "my", "name", "is", "am", "the", "a", "an", "and", "or", "of", "in", "on", "at",
			"to", "from", "born", "live", "it", "yes", "no", "hello", "hi", "hey", "please", "thanks",
			"thank", "you", "mr", "mrs", "ms", "dr", "call", "email", "phone", "number", "date",
			"street", "city", "address", "okay", "ok", "sure", "correct", "right", "wrong",
		),
		NamePhrases: []string{"my name is", "my full name is", "call me", "name's"},
		Countries: map[string]string{
			"italy": "Italy", "france": "France", "germany": "Germany", "spain": "Spain",
			"switzerland": "Switzerland", "uk": "United Kingdom", "united kingdom": "United Kingdom",
			"usa": "USA", "united states": "USA",
		},
		Affirmatives: []string{"yes", "yeah", "yep", "correct", "right", "that's right", "ok", "okay", "sure", "exactly", "confirm"},
		Negatives:    []string{"no", "nope", "not", "wrong", "incorrect", "that's wrong"},
		Corrections:  []string{"no", "i meant", "i mean", "sorry", "actually", "rather"},
		PartKeywords: map[domain.Part][]string{
			domain.PartPrefix:  {"prefix", "dial", "calling", "dialing"},
			domain.PartDay:     {"day"},
			domain.PartMonth:   {"month"},
			domain.PartYear:    {"year"},
			domain.PartFirst:   {"first", "firstname", "given", "forename"},
			domain.PartLast:    {"last", "lastname", "surname", "family"},
			domain.PartPostal:  {"postal", "zip", "postcode", "cap"},
			domain.PartStreet:  {"street", "road", "address"},
			domain.PartNumber:  {"number", "civic", "house"},
			domain.PartCity:    {"city", "town"},
			domain.PartCountry: {"country", "nation"},
		},
	}
}

// Italian returns the Italian tables.
func Italian() *Locale {
	return &Locale{
		Months: map[string]int{
			"gennaio": 1, "febbraio": 2, "marzo": 3, "aprile": 4, "maggio": 5, "giugno": 6,
			"luglio": 7, "agosto": 8, "settembre": 9, "ottobre": 10, "novembre": 11, "dicembre": 12,
			"gen": 1, "mag": 5, "giu": 6, "lug": 7, "ago": 8, "set": 9, "ott": 10, "dic": 12,
		},
		StopWords: set(
			"il", "lo", "la", "i", "gli", "le", "un", "una", "uno", "di", "da", "del", "della", "e", "o",
			"in", "con", "su", "per", "mi", "chiamo", "nome", "sono", "mio", "si", "sì", "no", "ciao",
			"buongiorno", "grazie", "nato", "nata", "il", "via", "piazza", "corso", "signor", "signora",
			"dott", "giusto", "esatto", "sbagliato", "numero", "telefono", "indirizzo", "data",
		),
		NamePhrases: []string{"mi chiamo", "il mio nome è", "il mio nome e'", "mi chiamano"},
		Countries: map[string]string{
			"italia": "Italia", "francia": "Francia", "germania": "Germania", "spagna": "Spagna",
			"svizzera": "Svizzera", "regno unito": "Regno Unito", "stati uniti": "Stati Uniti",
		},
		Affirmatives: []string{"sì", "si", "esatto", "giusto", "corretto", "va bene", "certo", "confermo"},
		Negatives:    []string{"no", "non è giusto", "sbagliato", "errato"},
		Corrections:  []string{"no", "intendevo", "volevo dire", "anzi", "scusa", "cioè"},
		PartKeywords: map[domain.Part][]string{
			domain.PartPrefix:  {"prefisso"},
			domain.PartDay:     {"giorno"},
			domain.PartMonth:   {"mese"},
			domain.PartYear:    {"anno"},
			domain.PartFirst:   {"nome"},
			domain.PartLast:    {"cognome"},
			domain.PartPostal:  {"cap"},
			domain.PartStreet:  {"via", "strada", "indirizzo"},
			domain.PartNumber:  {"civico"},
			domain.PartCity:    {"città", "citta", "comune"},
			domain.PartCountry: {"paese", "nazione", "stato"},
		},
	}
}

// DefaultLocale combines the English and Italian tables.
func DefaultLocale() *Locale {
	return Merge(English(), Italian())
}

// Merge combines several locales. Later tables win on conflicting map keys.
func Merge(locales ...*Locale) *Locale {
	out := &Locale{
		Months:       make(map[string]int),
		StopWords:    make(map[string]bool),
		Countries:    make(map[string]string),
		PartKeywords: make(map[domain.Part][]string),
	}
	for _, l := range locales {
		if l == nil {
			continue
		}
		for k, v := range l.Months {
			out.Months[k] = v
		}
		for k, v := range l.StopWords {
			out.StopWords[k] = v
		}
		for k, v := range l.Countries {
			out.Countries[k] = v
		}
		for p, kws := range l.PartKeywords {
			out.PartKeywords[p] = append(out.PartKeywords[p], kws...)
		}
		out.NamePhrases = append(out.NamePhrases, l.NamePhrases...)
		out.Affirmatives = append(out.Affirmatives, l.Affirmatives...)
		out.Negatives = append(out.Negatives, l.Negatives...)
		out.Corrections = append(out.Corrections, l.Corrections...)
	}
	return out
}

// MonthNumber resolves a month name.
func (l *Locale) MonthNumber(word string) (int, bool) {
	m, ok := l.Months[strings.ToLower(word)]
	return m, ok
}

// IsStopWord reports whether word is a function word of any loaded language.
func (l *Locale) IsStopWord(word string) bool {
	return l.StopWords[strings.ToLower(word)]
}

// Country resolves a country keyword to its canonical name.
func (l *Locale) Country(word string) (string, bool) {
	c, ok := l.Countries[strings.ToLower(strings.TrimSpace(word))]
	return c, ok
}

// IsAffirmative reports whether the utterance opens with an affirmative phrase.
func (l *Locale) IsAffirmative(text string) bool {
	_, ok := leadPhrase(text, l.Affirmatives)
	return ok && !l.IsNegative(text)
}

// IsNegative reports whether the utterance opens with a negative phrase.
func (l *Locale) IsNegative(text string) bool {
	_, ok := leadPhrase(text, l.Negatives)
	return ok
}

// StripCorrection removes leading correction phrases and the punctuation after them.
func (l *Locale) StripCorrection(text string) string {
	out := strings.TrimSpace(text)
	for {
		n, ok := leadPhrase(out, l.Corrections)
		if !ok {
			return out
		}
		out = strings.TrimLeftFunc(out[n:], func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
	}
}

// leadPhrase returns the byte length of the longest phrase that opens text on a word boundary.
func leadPhrase(text string, phrases []string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	offset := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	best := -1
	for _, p := range phrases {
		if p == "" || !strings.HasPrefix(lower, p) {
			continue
		}
		if rest := lower[len(p):]; rest != "" {
			r := []rune(rest)[0]
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		if len(p) > best {
			best = len(p)
		}
	}
	if best < 0 {
		return 0, false
	}
	return offset + best, true
}

func set(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}
