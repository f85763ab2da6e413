// Package entity pulls structured values (dates, money, parties, obligations
// and so on) out of legal text with a fixed table of patterns.
package entity

import (
	"regexp"
	"slices"
	"strings"
)

// Category names one extraction class. The string value is the key used in
// JSON output.
type Category string

const (
	Dates          Category = "dates"
	MonetaryValues Category = "monetary_values"
	Emails         Category = "emails"
	Phones         Category = "phones"
	Parties        Category = "parties"
	Obligations    Category = "obligations"
	LegalTerms     Category = "legal_terms"
)

// Categories lists every category in report order.
var Categories = []Category{Dates, MonetaryValues, Emails, Phones, Parties, Obligations, LegalTerms}

// Bag maps every category to its sorted, de-duplicated matches. Values are
// substrings of the input with their original casing, except LegalTerms,
// which holds the lowercase vocabulary term each match was found under.
type Bag map[Category][]string

// Total returns the number of values across all categories.
func (b Bag) Total() int {
	n := 0
	for _, v := range b {
		n += len(v)
	}
	return n
}

type matcher struct {
	category Category
	pattern  *regexp.Regexp
	clean    func(string) string
}

// Extractor holds the compiled pattern table. It is never mutated after New
// and is safe for concurrent use.
type Extractor struct {
	matchers []matcher
}

// New compiles the pattern table.
func New() *Extractor {
	return &Extractor{matchers: []matcher{
		{
			category: Dates,
			pattern: regexp.MustCompile(`(?i)\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|` +
				`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{2,4})\b`),
		},
		{
			// Letter codes need a word boundary; the symbols are not word characters.
			category: MonetaryValues,
			pattern:  regexp.MustCompile(`(?:\b(?:USD|INR|GBP)|[$₹€£])\s?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\b`),
		},
		{
			category: Emails,
			pattern:  regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		},
		{
			category: Phones,
			pattern:  regexp.MustCompile(`\+?\d[\d \-()]{7,}\d`),
		},
		{
			category: Parties,
			pattern: regexp.MustCompile(`(?i)\b(?:Company|Employer|Employee|Disclosing Party|Receiving Party|` +
				`Licensor|Licensee|Client|Contractor|Consultant|Corporation|LLC|Ltd|Inc|Partnership|` +
				`Vendor|Supplier|Customer)\b`),
		},
		{
			// Trigger word plus the operative text up to the next period, capped at 100 characters.
			category: Obligations,
			pattern: regexp.MustCompile(`(?i)\b(?:shall|must|will|agrees to|required to|obligated to|` +
				`responsible for|duty to|covenant to)\b[^.]{0,100}`),
			clean: strings.TrimSpace,
		},
		{
			// Prefix match so inflected forms ("Confidentiality", "terminated") count.
			category: LegalTerms,
			pattern: regexp.MustCompile(`(?i)\b(?:confidential|proprietary|intellectual property|copyright|` +
				`trademark|patent|liability|indemnify|breach|terminate|default|force majeure|arbitration|` +
				`jurisdiction|governing law)`),
			clean: strings.ToLower,
		},
	}}
}

// Extract runs every matcher over text. Each category is always present in the
// result, empty when nothing matched.
func (e *Extractor) Extract(text string) Bag {
	bag := make(Bag, len(e.matchers))
	for _, m := range e.matchers {
		bag[m.category] = m.find(text)
	}
	return bag
}

func (m matcher) find(text string) []string {
	found := m.pattern.FindAllString(text, -1)
	out := make([]string, 0, len(found))
	for _, s := range found {
		if m.clean != nil {
			s = m.clean(s)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
