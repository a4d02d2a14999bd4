// Package prose adapts the jdkato/prose NLP toolkit to the domain's
// query-analysis contract: tokenization, Penn Treebank POS tagging mapped
// to universal tags, and named-entity recognition.
package prose

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

// Analyzer implements domain.Analyzer with an English prose model.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze tokenizes and annotates text. Segmentation is skipped since
// inputs are single questions, not documents.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}

	tokens := doc.Tokens()
	out := make([]domain.Token, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, domain.Token{
			Text:      tok.Text,
			POS:       universalPOS(tok.Tag),
			EntityTag: entityTag(tok.Label),
			IsStop:    isStopword(tok.Text),
			IsPunct:   isPunct(tok.Text),
		})
	}

	return &domain.Analysis{Tokens: out}, nil
}

// universalPOS collapses Penn Treebank tags into the universal tags the
// filtering rules operate on. Tags outside the content classes pass
// through unchanged.
func universalPOS(pennTag string) string {
	switch pennTag {
	case "NNP", "NNPS":
		return domain.POSProperNoun
	case "NN", "NNS":
		return domain.POSNoun
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ", "MD":
		return domain.POSVerb
	}
	return pennTag
}

// entityTag strips the IOB prefix from a chunk label ("B-GPE" becomes
// "GPE"). Tokens outside any entity have an empty label.
func entityTag(label string) string {
	if label == "" || label == "O" {
		return ""
	}
	if i := strings.IndexByte(label, '-'); i >= 0 {
		return label[i+1:]
	}
	return label
}

func isPunct(text string) bool {
	for _, r := range text {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return len(text) > 0
}

func isStopword(text string) bool {
	_, ok := stopwords[strings.ToLower(text)]
	return ok
}

// stopwords is the English function-word list used for query filtering.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all am an and any are aren't as at
		be because been before being below between both but by
		can can't cannot could couldn't
		did didn't do does doesn't doing don't down during
		each few for from further
		had hadn't has hasn't have haven't having he he'd he'll he's her here
		here's hers herself him himself his how how's
		i i'd i'll i'm i've if in into is isn't it it's its itself
		let's me more most mustn't my myself
		no nor not of off on once only or other ought our ours ourselves out
		over own
		same shan't she she'd she'll she's should shouldn't so some such
		than that that's the their theirs them themselves then there there's
		these they they'd they'll they're they've this those through to too
		under until up very
		was wasn't we we'd we'll we're we've were weren't what what's when
		when's where where's which while who who's whom why why's with won't
		would wouldn't
		you you'd you'll you're you've your yours yourself yourselves
	`) {
		stopwords[w] = struct{}{}
	}
}
