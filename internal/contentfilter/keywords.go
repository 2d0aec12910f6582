package contentfilter

import (
	"fmt"
	"strings"
)

// KeywordMatcher scores text against the catalog's positive and negative
// category groups. The matching path performs no I/O and is safe for
// concurrent use.
type KeywordMatcher struct {
	catalog *Catalog
	seg     Segmenter
}

// NewKeywordMatcher creates a keyword matcher over an immutable catalog.
func NewKeywordMatcher(catalog *Catalog, seg Segmenter) *KeywordMatcher {
	return &KeywordMatcher{catalog: catalog, seg: seg}
}

// Match produces a keyword verdict for text. A keyword counts as matched when
// it is a substring of either the lowercased raw text or the space-joined
// token list. Equal positive and negative scores resolve to non-learning;
// the asymmetric tie-break is long-standing behavior and kept deliberately.
func (m *KeywordMatcher) Match(text string) Verdict {
	v := Verdict{Method: MethodKeywords}
	if text == "" || m.catalog.Empty() {
		return v
	}

	tokens := m.seg.Segment(text)
	if len(tokens) == 0 {
		return v
	}

	// Keywords never contain newlines, so a single haystack with a newline
	// separator cannot produce matches spanning the two halves.
	haystack := strings.ToLower(text) + "\n" + strings.Join(tokens, " ")

	positive := m.catalog.positive.match(haystack)
	negative := m.catalog.negative.match(haystack)

	positiveScore := len(positive)
	negativeScore := len(negative)
	if positiveScore == 0 && negativeScore == 0 {
		return v
	}

	total := positiveScore + negativeScore
	if positiveScore > negativeScore {
		v.IsLearning = boolPtr(true)
		v.Confidence = float64(positiveScore) / float64(total)
		v.Matched = positive
		v.Reason = fmt.Sprintf("匹配到 %d 个学习相关关键词", positiveScore)
		return v
	}

	v.IsLearning = boolPtr(false)
	v.Confidence = float64(negativeScore) / float64(total)
	v.Matched = negative
	v.Reason = fmt.Sprintf("匹配到 %d 个非学习相关关键词", negativeScore)
	return v
}

// IsNonLearning is the fast reminder-gate check: any positive keyword in the
// raw text means learning content, otherwise any negative keyword means
// non-learning. Unknown text defaults to learning to give users latitude.
func (m *KeywordMatcher) IsNonLearning(text string) bool {
	if text == "" || m.catalog.Empty() {
		return false
	}
	lowered := strings.ToLower(text)
	if len(m.catalog.positive.match(lowered)) > 0 {
		return false
	}
	return len(m.catalog.negative.match(lowered)) > 0
}
