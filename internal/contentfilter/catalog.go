package contentfilter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
)

// Category names the keyword matcher scans, split by polarity.
// Declaration order is significant: matches are reported in this order.
var (
	positiveCategories = []string{
		"learning_positive", "positive_zones", "tech_positive",
		"subject_positive", "skill_positive",
	}
	negativeCategories = []string{
		"learning_negative", "negative_zones", "game_negative",
		"entertainment_negative", "daily_negative",
	}
)

const maxCatalogLineBytes = 1 << 20

// Catalog is an immutable category -> keywords mapping loaded once at startup.
// Categories outside the fixed polarity sets are retained but never matched.
type Catalog struct {
	order      []string
	categories map[string][]string

	positive *polarityMatcher
	negative *polarityMatcher
}

// NewCatalog builds a catalog from an in-memory mapping. Category names are
// case-normalized. Intended for tests and dependency injection.
func NewCatalog(categories map[string][]string) *Catalog {
	c := &Catalog{categories: make(map[string][]string, len(categories))}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.put(name, categories[name])
	}
	c.buildMatchers()
	return c
}

// LoadCatalog reads the catalog from a flat text file. A missing or unreadable
// file is not an error: it is logged and an empty catalog is returned, which
// degrades every keyword verdict to indeterminate.
func LoadCatalog(path string, log logger.Logger) *Catalog {
	f, err := os.Open(path)
	if err != nil {
		log.Warn("keyword catalog unavailable, keyword matching disabled",
			logger.String("path", path),
			logger.Error(err))
		return NewCatalog(nil)
	}
	defer f.Close()

	c := ParseCatalog(f)
	log.Info("keyword catalog loaded",
		logger.String("path", path),
		logger.Int("categories", c.Len()))
	return c
}

// ParseCatalog reads catalog lines of the form "category:kw1,kw2,...".
// Blank lines and lines starting with '#' are skipped, as are lines without
// a ':'. Keywords are trimmed and empty entries dropped. Re-declaring a
// category overwrites the prior entry.
func ParseCatalog(r io.Reader) *Catalog {
	c := &Catalog{categories: make(map[string][]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCatalogLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		var keywords []string
		for _, kw := range strings.Split(rest, ",") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.put(name, keywords)
	}

	c.buildMatchers()
	return c
}

func (c *Catalog) put(name string, keywords []string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}
	if _, exists := c.categories[key]; !exists {
		c.order = append(c.order, key)
	}
	c.categories[key] = keywords
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Empty reports whether the catalog has no categories.
func (c *Catalog) Empty() bool {
	return len(c.categories) == 0
}

// Keywords returns the keywords of a category. Lookup is case-insensitive.
func (c *Catalog) Keywords(category string) []string {
	return c.categories[strings.ToLower(category)]
}

// Categories returns category names in declaration order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Serialize writes the catalog back out in the flat text format understood by
// ParseCatalog, one "category:kw1,kw2" line per category in declaration order.
func (c *Catalog) Serialize(w io.Writer) error {
	for _, name := range c.order {
		if _, err := fmt.Fprintf(w, "%s:%s\n", name, strings.Join(c.categories[name], ",")); err != nil {
			return fmt.Errorf("write catalog line %q: %w", name, err)
		}
	}
	return nil
}

func (c *Catalog) buildMatchers() {
	c.positive = newPolarityMatcher(c.categories, positiveCategories)
	c.negative = newPolarityMatcher(c.categories, negativeCategories)
}

// polarityMatcher matches all keywords of one polarity group in a single pass
// using an Aho-Corasick automaton.
type polarityMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string           // unique case-folded keywords, automaton order
	entries  map[string][]Match // case-folded keyword -> (category, keyword) pairs
}

func newPolarityMatcher(categories map[string][]string, names []string) *polarityMatcher {
	p := &polarityMatcher{entries: make(map[string][]Match)}
	for _, name := range names {
		for _, kw := range categories[name] {
			folded := strings.ToLower(kw)
			if folded == "" {
				continue
			}
			if _, seen := p.entries[folded]; !seen {
				p.keywords = append(p.keywords, folded)
			}
			p.entries[folded] = append(p.entries[folded], Match{Category: name, Keyword: kw})
		}
	}
	if len(p.keywords) > 0 {
		p.matcher = ahocorasick.NewStringMatcher(p.keywords)
	}
	return p
}

// match returns every (category, keyword) pair whose keyword is a substring of
// haystack, in category declaration order. haystack must already be lowercased.
func (p *polarityMatcher) match(haystack string) []Match {
	if p.matcher == nil || haystack == "" {
		return nil
	}

	hitIdx := p.matcher.Match([]byte(haystack))
	if len(hitIdx) == 0 {
		return nil
	}
	hits := make(map[string]bool, len(hitIdx))
	for _, idx := range hitIdx {
		hits[p.keywords[idx]] = true
	}

	var matches []Match
	for _, kw := range p.keywords {
		if hits[kw] {
			matches = append(matches, p.entries[kw]...)
		}
	}
	return matches
}
