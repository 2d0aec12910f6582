package contentfilter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
	"github.com/wcxxx57/bilibili-study-tool/internal/telemetry"
)

// Weights controls the differential voting of the aggregator. Query verdicts
// outweigh item verdicts because the query states explicit user intent while
// item fields are incidental content of whatever the platform returned.
type Weights struct {
	Query    float64
	Item     float64
	MaxItems int
}

// DefaultWeights returns the production weighting: query 10, item 1, at most
// five items inspected.
func DefaultWeights() Weights {
	return Weights{Query: 10, Item: 1, MaxItems: 5}
}

// Options configures an Analyzer beyond its catalog and segmenter.
type Options struct {
	Weights        Weights
	ZoneConfidence float64
	Telemetry      *telemetry.Provider
}

// Analyzer combines keyword and zone signals from a search query and its
// result items into a single verdict, or flags the input for semantic
// escalation when the catalog cannot decide. Stateless after construction;
// safe for concurrent use.
type Analyzer struct {
	keywords  *KeywordMatcher
	zones     *ZoneMatcher
	weights   Weights
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// NewAnalyzer creates an analyzer over an immutable catalog.
func NewAnalyzer(log logger.Logger, catalog *Catalog, seg Segmenter, opts Options) *Analyzer {
	weights := opts.Weights
	if weights.Query == 0 && weights.Item == 0 {
		weights = DefaultWeights()
	}
	if weights.MaxItems <= 0 {
		weights.MaxItems = DefaultWeights().MaxItems
	}

	if opts.Telemetry != nil {
		opts.Telemetry.Metrics.CatalogCategories.Set(float64(catalog.Len()))
	}

	return &Analyzer{
		keywords:  NewKeywordMatcher(catalog, seg),
		zones:     NewZoneMatcher(opts.ZoneConfidence),
		weights:   weights,
		logger:    log,
		telemetry: opts.Telemetry,
	}
}

// Keywords exposes the underlying keyword matcher for the reminder gate.
func (a *Analyzer) Keywords() *KeywordMatcher {
	return a.keywords
}

// Analyze runs the signal extractors over the query and up to MaxItems items
// and aggregates the verdicts by weighted vote. It never returns an error:
// degraded input resolves to an indeterminate result with the escalation flag
// set. The reported confidence is the unweighted mean of all detail
// confidences; the vote weights deliberately do not influence it.
func (a *Analyzer) Analyze(ctx context.Context, query string, items []Item) *AnalysisResult {
	start := time.Now()

	var span trace.Span
	if a.telemetry != nil {
		ctx, span = a.telemetry.Tracer.Start(ctx, "contentfilter.Analyze")
		defer span.End()
	}
	_ = ctx

	details := a.collectDetails(query, items)
	result := a.aggregate(details)

	if a.telemetry != nil {
		a.telemetry.Metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
		a.telemetry.Metrics.AnalysesTotal.WithLabelValues(outcomeLabel(result)).Inc()
		span.SetAttributes(
			attribute.Int("details", len(details)),
			attribute.Bool("escalate", result.NeedSemanticAnalysis),
		)
	}

	a.logger.Debug("content analysis complete",
		logger.String("query", query),
		logger.Int("items", len(items)),
		logger.Int("details", len(details)),
		logger.Bool("need_semantic", result.NeedSemanticAnalysis),
		logger.Float64("confidence", result.Confidence),
		logger.Int64("elapsed_us", time.Since(start).Microseconds()),
	)

	return result
}

func (a *Analyzer) collectDetails(query string, items []Item) []SourceVerdict {
	var details []SourceVerdict

	if query != "" {
		if v := a.keywords.Match(query); !v.Indeterminate() {
			details = append(details, SourceVerdict{Source: "search_query", Content: query, Verdict: v})
		}
	}

	limit := min(a.weights.MaxItems, len(items))
	for i := range limit {
		item := items[i]

		if item.Title != "" {
			if v := a.keywords.Match(item.Title); !v.Indeterminate() {
				details = append(details, SourceVerdict{
					Source: fmt.Sprintf("item_%d_title", i), Content: item.Title, Verdict: v,
				})
			}
		}

		// Zone label preferred over tname when both are present.
		label := item.Zone
		if label == "" {
			label = item.TName
		}
		if label != "" {
			if v := a.zones.Match(label); !v.Indeterminate() {
				details = append(details, SourceVerdict{
					Source: fmt.Sprintf("item_%d_zone", i), Content: label, Verdict: v,
				})
			}
		}

		if len(item.Tags) > 0 {
			joined := strings.Join(item.Tags, " ")
			if v := a.keywords.Match(joined); !v.Indeterminate() {
				details = append(details, SourceVerdict{
					Source: fmt.Sprintf("item_%d_tags", i), Content: joined, Verdict: v,
				})
			}
		}
	}

	return details
}

func (a *Analyzer) aggregate(details []SourceVerdict) *AnalysisResult {
	if len(details) == 0 {
		return &AnalysisResult{
			NeedSemanticAnalysis: true,
			Reason:               "关键词库无法判断，需要AI语义分析",
			Details:              []SourceVerdict{},
		}
	}

	var learningScore, nonLearningScore, confidenceSum float64
	for _, d := range details {
		confidenceSum += d.Confidence

		weight := a.weights.Item
		if d.Source == "search_query" {
			weight = a.weights.Query
		}
		if *d.IsLearning {
			learningScore += weight
		} else {
			nonLearningScore += weight
		}
	}

	confidence := confidenceSum / float64(len(details))

	switch {
	case learningScore > nonLearningScore:
		return &AnalysisResult{
			IsLearningRelated: boolPtr(true),
			Confidence:        confidence,
			Reason:            "关键词分析显示与学习相关",
			Details:           details,
		}
	case nonLearningScore > learningScore:
		return &AnalysisResult{
			IsLearningRelated: boolPtr(false),
			Confidence:        confidence,
			Reason:            "关键词分析显示与学习无关",
			Details:           details,
		}
	default:
		return &AnalysisResult{
			Confidence:           confidence,
			NeedSemanticAnalysis: true,
			Reason:               "关键词分析结果不明确，需要AI语义分析",
			Details:              details,
		}
	}
}

func outcomeLabel(r *AnalysisResult) string {
	switch {
	case r.NeedSemanticAnalysis:
		return telemetry.OutcomeEscalate
	case *r.IsLearningRelated:
		return telemetry.OutcomeLearning
	default:
		return telemetry.OutcomeNonLearning
	}
}
