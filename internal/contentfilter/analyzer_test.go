package contentfilter_test

import (
	"context"
	"testing"

	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
)

func newAnalyzer(opts contentfilter.Options) *contentfilter.Analyzer {
	return contentfilter.NewAnalyzer(logger.NewNop(), testCatalog(), contentfilter.SimpleSegmenter{}, opts)
}

func TestAnalyzer_NoSignalEscalates(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	result := a.Analyze(context.Background(), "abc123", nil)

	if result.IsLearningRelated != nil {
		t.Error("expected nil polarity")
	}
	if !result.NeedSemanticAnalysis {
		t.Error("expected semantic escalation flag")
	}
	if result.Reason != "关键词库无法判断，需要AI语义分析" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
	if result.Details == nil || len(result.Details) != 0 {
		t.Errorf("expected empty non-nil details, got %v", result.Details)
	}
}

func TestAnalyzer_PositiveQueryOnly(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	result := a.Analyze(context.Background(), "Python编程教程", nil)

	if result.IsLearningRelated == nil || !*result.IsLearningRelated {
		t.Fatal("expected learning result")
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", result.Confidence)
	}
	if result.NeedSemanticAnalysis {
		t.Error("did not expect escalation")
	}
	if len(result.Details) != 1 || result.Details[0].Source != "search_query" {
		t.Errorf("expected single search_query detail, got %+v", result.Details)
	}
	if result.Reason != "关键词分析显示与学习相关" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestAnalyzer_QueryOutweighsItems(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	// Four non-learning item titles at weight 1 each cannot outvote the
	// learning query at weight 10.
	items := []contentfilter.Item{
		{Title: "游戏直播"},
		{Title: "王者荣耀"},
		{Title: "游戏娱乐"},
		{Title: "娱乐直播"},
	}
	result := a.Analyze(context.Background(), "Python编程教程", items)

	if result.IsLearningRelated == nil || !*result.IsLearningRelated {
		t.Fatal("expected query weight to dominate")
	}
	if len(result.Details) != 5 {
		t.Errorf("expected 5 details, got %d", len(result.Details))
	}
}

func TestAnalyzer_WeightFlipThreshold(t *testing.T) {
	makeItems := func(n int) []contentfilter.Item {
		items := make([]contentfilter.Item, n)
		for i := range items {
			items[i] = contentfilter.Item{Title: "王者荣耀"}
		}
		return items
	}

	// Nine opposing item verdicts at weight 1 lose to the query at weight 10.
	a := newAnalyzer(contentfilter.Options{
		Weights: contentfilter.Weights{Query: 10, Item: 1, MaxItems: 9},
	})
	result := a.Analyze(context.Background(), "Python编程教程", makeItems(9))
	if result.IsLearningRelated == nil || !*result.IsLearningRelated {
		t.Error("expected query to outvote 9 opposing items")
	}

	// Eleven opposing item verdicts flip the aggregate.
	a = newAnalyzer(contentfilter.Options{
		Weights: contentfilter.Weights{Query: 10, Item: 1, MaxItems: 11},
	})
	result = a.Analyze(context.Background(), "Python编程教程", makeItems(11))
	if result.IsLearningRelated == nil || *result.IsLearningRelated {
		t.Error("expected 11 opposing items to outvote the query")
	}

	// Exactly ten opposing items tie the vote and escalate.
	a = newAnalyzer(contentfilter.Options{
		Weights: contentfilter.Weights{Query: 10, Item: 1, MaxItems: 10},
	})
	result = a.Analyze(context.Background(), "Python编程教程", makeItems(10))
	if result.IsLearningRelated != nil || !result.NeedSemanticAnalysis {
		t.Error("expected balanced vote to escalate")
	}
}

func TestAnalyzer_ItemsOutvoteWithFlatWeights(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{
		Weights: contentfilter.Weights{Query: 1, Item: 1, MaxItems: 5},
	})

	items := []contentfilter.Item{
		{Title: "游戏直播"},
		{Title: "王者荣耀"},
	}
	result := a.Analyze(context.Background(), "学习", items)

	if result.IsLearningRelated == nil || *result.IsLearningRelated {
		t.Fatal("expected non-learning result")
	}
	if result.Reason != "关键词分析显示与学习无关" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestAnalyzer_BalancedVoteEscalates(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{
		Weights: contentfilter.Weights{Query: 1, Item: 1, MaxItems: 5},
	})

	result := a.Analyze(context.Background(), "学习", []contentfilter.Item{{Title: "游戏直播"}})

	if result.IsLearningRelated != nil {
		t.Error("expected nil polarity on balanced vote")
	}
	if !result.NeedSemanticAnalysis {
		t.Error("expected escalation on balanced vote")
	}
	if result.Reason != "关键词分析结果不明确，需要AI语义分析" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestAnalyzer_MaxItemsTruncates(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{
		Weights: contentfilter.Weights{Query: 10, Item: 1, MaxItems: 2},
	})

	items := []contentfilter.Item{
		{Title: "学习教程"},
		{Title: "编程课程"},
		{Title: "王者荣耀"},
		{Title: "游戏直播"},
	}
	result := a.Analyze(context.Background(), "", items)

	if len(result.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(result.Details))
	}
	if result.Details[0].Source != "item_0_title" || result.Details[1].Source != "item_1_title" {
		t.Errorf("unexpected sources %q, %q", result.Details[0].Source, result.Details[1].Source)
	}
	if result.IsLearningRelated == nil || !*result.IsLearningRelated {
		t.Error("expected learning result from first two items")
	}
}

func TestAnalyzer_ZoneSignals(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	items := []contentfilter.Item{{Zone: "知识"}}
	result := a.Analyze(context.Background(), "", items)

	if len(result.Details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(result.Details))
	}
	d := result.Details[0]
	if d.Source != "item_0_zone" {
		t.Errorf("expected source item_0_zone, got %q", d.Source)
	}
	if d.Confidence != contentfilter.DefaultZoneConfidence {
		t.Errorf("expected zone confidence %v, got %v", contentfilter.DefaultZoneConfidence, d.Confidence)
	}
	if result.IsLearningRelated == nil || !*result.IsLearningRelated {
		t.Error("expected learning result from zone")
	}
}

func TestAnalyzer_TNameFallsBackWhenZoneEmpty(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	result := a.Analyze(context.Background(), "", []contentfilter.Item{{TName: "游戏"}})

	if len(result.Details) != 1 || result.Details[0].Content != "游戏" {
		t.Fatalf("expected tname zone detail, got %+v", result.Details)
	}
	if result.IsLearningRelated == nil || *result.IsLearningRelated {
		t.Error("expected non-learning result from tname")
	}
}

func TestAnalyzer_TagsJoinedForMatching(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	items := []contentfilter.Item{{Tags: []string{"编程", "教程"}}}
	result := a.Analyze(context.Background(), "", items)

	if len(result.Details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(result.Details))
	}
	if result.Details[0].Source != "item_0_tags" {
		t.Errorf("expected source item_0_tags, got %q", result.Details[0].Source)
	}
	if result.Details[0].Content != "编程 教程" {
		t.Errorf("expected joined tags content, got %q", result.Details[0].Content)
	}
}

func TestAnalyzer_ConfidenceIsUnweightedMean(t *testing.T) {
	a := newAnalyzer(contentfilter.Options{})

	// Query verdict confidence 1.0, zone verdict confidence 0.9.
	result := a.Analyze(context.Background(), "学习", []contentfilter.Item{{Zone: "知识"}})

	want := (1.0 + contentfilter.DefaultZoneConfidence) / 2
	if diff := result.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected confidence %v, got %v", want, result.Confidence)
	}
}
