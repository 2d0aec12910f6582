package contentfilter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"golang.org/x/text/unicode/norm"
)

// Segmenter splits free text into semantic word units. Implementations must be
// safe for concurrent use once constructed.
type Segmenter interface {
	Segment(text string) []string
}

const minTokenRunes = 2

// GseSegmenter segments mixed Chinese/Latin text with the gse dictionary
// segmenter. Construction loads the embedded dictionary and is expensive;
// build one per process.
type GseSegmenter struct {
	seg gse.Segmenter
}

// NewGseSegmenter loads the default segmentation dictionary.
func NewGseSegmenter() (*GseSegmenter, error) {
	var s GseSegmenter
	if err := s.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmenter dictionary: %w", err)
	}
	return &s, nil
}

// Segment tokenizes text lowercased and width-normalized, then drops tokens
// shorter than two runes or containing anything besides CJK ideographs, ASCII
// letters, and digits.
func (g *GseSegmenter) Segment(text string) []string {
	if text == "" {
		return nil
	}
	return filterTokens(g.seg.Cut(foldText(text), true))
}

// SimpleSegmenter is a dictionary-free fallback used when the gse dictionary
// cannot be loaded, and in tests. It groups consecutive runes of the same
// script class: one token per CJK run and one per Latin/digit run.
type SimpleSegmenter struct{}

// Segment implements Segmenter.
func (SimpleSegmenter) Segment(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	var current strings.Builder
	currentHan := false
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range foldText(text) {
		switch {
		case unicode.Is(unicode.Han, r):
			if !currentHan {
				flush()
			}
			currentHan = true
			current.WriteRune(r)
		case isASCIIAlnum(r):
			if currentHan {
				flush()
			}
			currentHan = false
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return filterTokens(tokens)
}

// foldText lowercases and NFKC-normalizes text so fullwidth Latin forms match
// their ASCII keywords.
func foldText(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

func filterTokens(tokens []string) []string {
	filtered := tokens[:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < minTokenRunes {
			continue
		}
		if !isCleanToken(tok) {
			continue
		}
		filtered = append(filtered, tok)
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// isCleanToken reports whether the token is entirely CJK ideographs, ASCII
// letters, or ASCII digits.
func isCleanToken(tok string) bool {
	for _, r := range tok {
		if !unicode.Is(unicode.Han, r) && !isASCIIAlnum(r) {
			return false
		}
	}
	return true
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
