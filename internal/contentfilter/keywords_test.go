package contentfilter_test

import (
	"testing"

	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
)

func testCatalog() *contentfilter.Catalog {
	return contentfilter.NewCatalog(map[string][]string{
		"learning_positive":      {"教程", "学习", "课程"},
		"tech_positive":          {"编程", "python"},
		"game_negative":          {"游戏", "王者荣耀"},
		"entertainment_negative": {"直播", "娱乐"},
	})
}

func newKeywordMatcher() *contentfilter.KeywordMatcher {
	return contentfilter.NewKeywordMatcher(testCatalog(), contentfilter.SimpleSegmenter{})
}

func TestKeywordMatcher_PositiveDominates(t *testing.T) {
	v := newKeywordMatcher().Match("Python编程教程")

	if v.IsLearning == nil || !*v.IsLearning {
		t.Fatal("expected learning verdict")
	}
	if v.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", v.Confidence)
	}
	if len(v.Matched) != 3 {
		t.Errorf("expected 3 matches, got %v", v.Matched)
	}
	if v.Reason != "匹配到 3 个学习相关关键词" {
		t.Errorf("unexpected reason %q", v.Reason)
	}
}

func TestKeywordMatcher_NegativeDominates(t *testing.T) {
	v := newKeywordMatcher().Match("游戏直播")

	if v.IsLearning == nil || *v.IsLearning {
		t.Fatal("expected non-learning verdict")
	}
	if v.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", v.Confidence)
	}
	if v.Reason != "匹配到 2 个非学习相关关键词" {
		t.Errorf("unexpected reason %q", v.Reason)
	}
}

func TestKeywordMatcher_TieResolvesToNonLearning(t *testing.T) {
	// One positive (学习) and one negative (游戏) keyword.
	v := newKeywordMatcher().Match("学习游戏")

	if v.IsLearning == nil || *v.IsLearning {
		t.Fatal("expected tie to resolve to non-learning")
	}
	if v.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %v", v.Confidence)
	}
}

func TestKeywordMatcher_MixedScoresConfidence(t *testing.T) {
	// Positives: 学习, 教程, 编程. Negative: 游戏.
	v := newKeywordMatcher().Match("学习编程教程 游戏")

	if v.IsLearning == nil || !*v.IsLearning {
		t.Fatal("expected learning verdict")
	}
	if v.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", v.Confidence)
	}
}

func TestKeywordMatcher_Indeterminate(t *testing.T) {
	m := newKeywordMatcher()

	cases := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"no catalog hit", "abc123"},
		{"punctuation only", "！！！"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if v := m.Match(tc.text); !v.Indeterminate() {
				t.Errorf("expected indeterminate verdict for %q, got %+v", tc.text, v)
			}
		})
	}
}

func TestKeywordMatcher_EmptyCatalogIsIndeterminate(t *testing.T) {
	m := contentfilter.NewKeywordMatcher(contentfilter.NewCatalog(nil), contentfilter.SimpleSegmenter{})
	if v := m.Match("学习编程"); !v.Indeterminate() {
		t.Errorf("expected indeterminate verdict, got %+v", v)
	}
}

func TestKeywordMatcher_CaseFoldedSubstring(t *testing.T) {
	v := newKeywordMatcher().Match("PYTHON入门")
	if v.IsLearning == nil || !*v.IsLearning {
		t.Error("expected uppercase latin text to match lowercase keyword")
	}
}

func TestKeywordMatcher_IsNonLearning(t *testing.T) {
	m := newKeywordMatcher()

	cases := []struct {
		text string
		want bool
	}{
		{"游戏直播", true},
		{"Python编程教程", false},
		{"游戏开发教程", false}, // positive keyword wins over negative
		{"abc123", false},  // unknown defaults to learning
		{"", false},
	}
	for _, tc := range cases {
		if got := m.IsNonLearning(tc.text); got != tc.want {
			t.Errorf("IsNonLearning(%q): expected %v, got %v", tc.text, tc.want, got)
		}
	}
}
