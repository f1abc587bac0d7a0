// Package classify filters articles against the union term list, labels
// them with outlet leanings and splits the result into output partitions.
package classify

import (
	"fmt"
	"strings"

	"github.com/IshaanNene/unioncorpus/internal/terms"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Filter modes.
const (
	ModeTerms   = "terms"
	ModePhrases = "phrases"
)

// Title sources.
const (
	// TitleFromContent derives the title signal from the content text, so a
	// union named only in the headline is not detected.
	TitleFromContent = "content"
	TitleFromTitle   = "title"
	TitleNone        = "none"
)

// ambiguousPhrases are removed before counting in phrases mode.
var ambiguousPhrases = []string{
	"european union", "civil union", "rugby union", "customs union", "unionist",
	"banking union", "christian democratic union", "credit union", "transfer union", "fiscal union",
}

// countedPhrases are counted in phrases mode.
var countedPhrases = []string{" union", " labour", " labor"}

// minPhraseCount is the count countedPhrases must exceed.
const minPhraseCount = 2

// Matcher decides whether an article mentions one of its terms as a whole
// word. It is immutable and safe for concurrent use.
type Matcher struct {
	mode        string
	titleSource string
	padded      []string
}

// NewMatcher builds a matcher over the given terms. Terms are cleaned the
// same way as article text.
func NewMatcher(mode, titleSource string, list []string) (*Matcher, error) {
	switch mode {
	case ModeTerms, ModePhrases:
	default:
		return nil, fmt.Errorf("unknown filter mode %q", mode)
	}
	switch titleSource {
	case TitleFromContent, TitleFromTitle, TitleNone:
	default:
		return nil, fmt.Errorf("unknown title source %q", titleSource)
	}

	m := &Matcher{mode: mode, titleSource: titleSource}
	for _, t := range list {
		if c := terms.Clean(t); c != "" {
			m.padded = append(m.padded, " "+c+" ")
		}
	}
	if mode == ModeTerms && len(m.padded) == 0 {
		return nil, fmt.Errorf("term matcher needs at least one term")
	}
	return m, nil
}

// NewTermMatcher is a terms-mode matcher reading content only.
func NewTermMatcher(list []string) (*Matcher, error) {
	return NewMatcher(ModeTerms, TitleFromContent, list)
}

// Matches reports whether the article passes the filter.
func (m *Matcher) Matches(a *types.Article) bool {
	content := pad(a.Content)
	if m.mode == ModePhrases {
		return matchPhrases(content)
	}

	title := ""
	if m.titleSource == TitleFromTitle {
		title = pad(a.Title)
	}
	// With TitleFromContent the title text equals content, so one check
	// covers both.
	for _, t := range m.padded {
		if strings.Contains(content, t) || (title != "" && strings.Contains(title, t)) {
			return true
		}
	}
	return false
}

func pad(s string) string {
	return " " + terms.CleanText(s) + " "
}

func matchPhrases(text string) bool {
	for _, p := range ambiguousPhrases {
		text = strings.ReplaceAll(text, p, " ")
	}
	if !strings.Contains(text, " union") {
		return false
	}
	n := 0
	for _, p := range countedPhrases {
		n += strings.Count(text, p)
	}
	return n > minPhraseCount
}

// Filter splits articles into those the matcher accepts and the rest. Every
// article lands in exactly one side, in input order.
func Filter(articles []types.Article, m *Matcher) (kept, eliminated []types.Article) {
	kept = make([]types.Article, 0, len(articles))
	for i := range articles {
		if m.Matches(&articles[i]) {
			kept = append(kept, articles[i])
		} else {
			eliminated = append(eliminated, articles[i])
		}
	}
	return kept, eliminated
}
