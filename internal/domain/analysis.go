package domain

import (
	"context"
	"strings"
)

// Universal part-of-speech tags relevant to query filtering.
const (
	POSNoun       = "NOUN"
	POSVerb       = "VERB"
	POSProperNoun = "PROPN"
)

// Token is a single annotated token of a query.
type Token struct {
	Text      string
	POS       string
	EntityTag string
	IsStop    bool
	IsPunct   bool
}

// Keep reports whether the token survives query enhancement: named entity,
// content part of speech, or neither stop word nor punctuation.
func (t Token) Keep() bool {
	if t.EntityTag != "" || t.isContentPOS() {
		return true
	}
	return !t.IsStop && !t.IsPunct
}

func (t Token) isContentPOS() bool {
	switch t.POS {
	case POSNoun, POSVerb, POSProperNoun:
		return true
	}
	return false
}

// Analysis is the structured linguistic annotation of a query. It is
// produced once per query by the normalizer and reused by keyword scoring,
// so per-candidate scoring never re-runs linguistic analysis.
type Analysis struct {
	Tokens []Token
}

// KeywordSet returns the lower-cased set of query tokens that carry an
// entity tag or a content part of speech. Keyword scores divide by the
// size of this set.
func (a *Analysis) KeywordSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range a.Tokens {
		if t.EntityTag != "" || t.isContentPOS() {
			set[strings.ToLower(t.Text)] = struct{}{}
		}
	}
	return set
}

// Analyzer runs linguistic analysis over text.
// Implementations must be deterministic for identical input.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}
