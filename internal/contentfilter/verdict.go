// Package contentfilter decides whether a search query and its result items
// are learning-related, using weighted keyword and zone matching over a
// category keyword catalog. Inconclusive verdicts are flagged for semantic
// escalation instead of being forced.
package contentfilter

import "encoding/json"

// Method identifies which signal extractor produced a verdict.
type Method string

const (
	// MethodKeywords marks verdicts from the keyword catalog matcher.
	MethodKeywords Method = "keywords"
	// MethodZone marks verdicts from the zone/category label matcher.
	MethodZone Method = "zone"
)

// Match records a single matched keyword and the catalog category it came from.
type Match struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
}

// Verdict is the outcome of a single signal extractor run.
// IsLearning nil means the extractor could not decide; that is a first-class
// outcome, not an error.
type Verdict struct {
	Method     Method  `json:"method"`
	IsLearning *bool   `json:"is_learning"`
	Confidence float64 `json:"confidence"`
	Matched    []Match `json:"matched,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Indeterminate reports whether the verdict carries no polarity.
func (v Verdict) Indeterminate() bool {
	return v.IsLearning == nil
}

// SourceVerdict tags a verdict with the input field it was extracted from:
// "search_query", or "item_<i>_title" / "item_<i>_zone" / "item_<i>_tags".
type SourceVerdict struct {
	Source  string `json:"source"`
	Content string `json:"content,omitempty"`
	Verdict
}

// AnalysisResult is the aggregate outcome of analyzing a query plus items.
type AnalysisResult struct {
	IsLearningRelated    *bool           `json:"is_learning_related"`
	Confidence           float64         `json:"confidence"`
	NeedSemanticAnalysis bool            `json:"need_semantic_analysis"`
	Reason               string          `json:"reason"`
	Details              []SourceVerdict `json:"details"`
}

// Item carries the optional fields of one search result consumed by the
// aggregator. All fields may be empty.
type Item struct {
	Title string   `json:"title,omitempty"`
	Zone  string   `json:"zone,omitempty"`
	TName string   `json:"tname,omitempty"`
	Desc  string   `json:"desc,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// UnmarshalJSON decodes an item leniently: wrong-typed fields are skipped
// rather than failing the whole item, and tags may be either a single string
// or an array of strings.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it.Title = stringField(raw, "title")
	it.Zone = stringField(raw, "zone")
	it.TName = stringField(raw, "tname")
	it.Desc = stringField(raw, "desc")
	it.Tags = tagsField(raw["tags"])
	return nil
}

func stringField(raw map[string]json.RawMessage, key string) string {
	msg, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return ""
	}
	return s
}

func tagsField(msg json.RawMessage) []string {
	if len(msg) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(msg, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
