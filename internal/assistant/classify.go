// Package assistant builds the prompts for the model-backed operations
// (classification, clause simplification, document chat) and interprets
// what comes back.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"clausewise/internal/llm"
)

// ClassifyExcerptRunes is how much of the document the classifier sees.
const ClassifyExcerptRunes = 4000

const classifySystemPrompt = "You are a precise legal document classifier. " +
	"Respond with exactly one label from the provided options."

// Classification is the classifier's answer. Canonical is false when the model
// named none of the known labels and Label holds its raw reply instead.
type Classification struct {
	Label     string `json:"label"`
	Canonical bool   `json:"canonical"`
}

// Classifier maps documents onto Labels.
type Classifier struct {
	gw llm.Gateway
}

// NewClassifier returns a classifier backed by gw.
func NewClassifier(gw llm.Gateway) *Classifier {
	return &Classifier{gw: gw}
}

// Classify asks the model for a document type.
func (c *Classifier) Classify(ctx context.Context, text string, s llm.Settings) Classification {
	res := c.gw.Chat(ctx, classifySystemPrompt, ClassificationPrompt(text), s)
	return MatchLabel(res.String())
}

// ClassificationPrompt lists the labels and the start of the document.
func ClassificationPrompt(text string) string {
	names := make([]string, len(Labels))
	for i, l := range Labels {
		names[i] = string(l)
	}
	return fmt.Sprintf("Classify this document into one of these categories: %s.\n\nDocument excerpt:\n%s",
		strings.Join(names, ", "), head(text, ClassifyExcerptRunes))
}

// MatchLabel returns the first label, in Labels order, that appears anywhere
// in the response (case-insensitive). A label's parenthesised short form
// ("NDA") is tried as a whole word only after no full label matched. Without
// a hit the first MaxRawLabelRunes runes of the response are returned.
func MatchLabel(response string) Classification {
	lower := strings.ToLower(response)
	for _, l := range Labels {
		if strings.Contains(lower, strings.ToLower(string(l))) {
			return Classification{Label: string(l), Canonical: true}
		}
	}
	for _, a := range shortForms {
		if a.pattern.MatchString(response) {
			return Classification{Label: string(a.label), Canonical: true}
		}
	}
	return Classification{Label: head(response, MaxRawLabelRunes)}
}

type shortForm struct {
	label   Label
	pattern *regexp.Regexp
}

var shortForms = buildShortForms()

func buildShortForms() []shortForm {
	var out []shortForm
	for _, l := range Labels {
		s := string(l)
		lp, rp := strings.Index(s, "("), strings.Index(s, ")")
		if lp < 0 || rp <= lp+1 {
			continue
		}
		abbr := regexp.QuoteMeta(s[lp+1 : rp])
		out = append(out, shortForm{label: l, pattern: regexp.MustCompile(`(?i)\b` + abbr + `\b`)})
	}
	return out
}

// head returns the first n runes of s.
func head(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
