package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wcxxx57/bilibili-study-tool/internal/bili"
	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
	"github.com/wcxxx57/bilibili-study-tool/internal/database"
	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
	"github.com/wcxxx57/bilibili-study-tool/internal/processor"
	"github.com/wcxxx57/bilibili-study-tool/internal/semantic"
	"github.com/wcxxx57/bilibili-study-tool/internal/telemetry"
)

// Handler handles HTTP requests for the content analysis API.
type Handler struct {
	analyzer  *contentfilter.Analyzer
	batch     *processor.BatchProcessor
	completer semantic.Completer
	prefs     *database.PreferenceRepository
	bili      *bili.Client
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// NewHandler creates a new API handler. completer may be nil when semantic
// escalation is disabled; bili may be nil when no upstream API is configured.
func NewHandler(
	analyzer *contentfilter.Analyzer,
	batch *processor.BatchProcessor,
	completer semantic.Completer,
	prefs *database.PreferenceRepository,
	biliClient *bili.Client,
	tp *telemetry.Provider,
	log logger.Logger,
) *Handler {
	return &Handler{
		analyzer:  analyzer,
		batch:     batch,
		completer: completer,
		prefs:     prefs,
		bili:      biliClient,
		telemetry: tp,
		logger:    log,
	}
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Query string               `json:"query"`
	Items []contentfilter.Item `json:"items"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.analyzer.Analyze(c.Request.Context(), req.Query, req.Items)
	c.JSON(http.StatusOK, result)
}

// BatchAnalyzeRequest is the body of POST /api/v1/analyze/batch.
type BatchAnalyzeRequest struct {
	Requests []processor.Request `json:"requests" binding:"required"`
}

const maxBatchSize = 100

// AnalyzeBatch handles POST /api/v1/analyze/batch.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid batch analyze request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Requests) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}

	results := h.batch.Process(c.Request.Context(), req.Requests)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// SemanticResponse is the body of a successful POST /api/v1/analyze/semantic.
type SemanticResponse struct {
	IsLearningRelated *bool   `json:"is_learning_related"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
	FullReply         string  `json:"full_reply"`
}

// AnalyzeSemantic handles POST /api/v1/analyze/semantic: it builds the
// escalation prompt, calls the completion service, and parses the free-form
// reply. Service failure is reported as a distinct unavailable outcome, never
// as an inconclusive verdict.
func (h *Handler) AnalyzeSemantic(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid semantic analyze request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}
	if h.completer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "semantic analysis disabled"})
		return
	}

	prompt := contentfilter.BuildPrompt(req.Query, req.Items)

	start := time.Now()
	reply, err := h.completer.Complete(c.Request.Context(), contentfilter.SystemPrompt, prompt)
	if h.telemetry != nil {
		h.telemetry.Metrics.EscalationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		h.observeEscalation(telemetry.EscalationUnavailable)
		h.logger.Warn("semantic analysis unavailable",
			logger.String("query", req.Query),
			logger.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, semantic.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "semantic analysis unavailable"})
		return
	}
	h.observeEscalation(telemetry.EscalationOK)

	judgment := contentfilter.ParseReply(reply)
	c.JSON(http.StatusOK, SemanticResponse{
		IsLearningRelated: judgment.IsLearning,
		Confidence:        judgment.Confidence,
		Reason:            judgment.Reason,
		FullReply:         reply,
	})
}

func (h *Handler) observeEscalation(outcome string) {
	if h.telemetry != nil {
		h.telemetry.Metrics.EscalationsTotal.WithLabelValues(outcome).Inc()
	}
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Keyword  string                        `json:"keyword"`
	Videos   []bili.SearchResult           `json:"videos"`
	Analysis *contentfilter.AnalysisResult `json:"analysis,omitempty"`
}

// Search handles GET /api/v1/search?keyword=...&user_id=...: it proxies the
// upstream video search and attaches a content analysis of the keyword plus
// the first results, unless the user turned the content filter reminder off.
func (h *Handler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword must not be empty"})
		return
	}
	if h.bili == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "video search not configured"})
		return
	}

	videos, err := h.bili.Search(c.Request.Context(), keyword)
	if err != nil {
		// Search failure still gets a keyword-only analysis.
		h.logger.Warn("video search failed",
			logger.String("keyword", keyword),
			logger.Error(err))
		videos = nil
	}

	resp := SearchResponse{Keyword: keyword, Videos: videos}
	if h.shouldAnalyze(c, keyword) {
		items := make([]contentfilter.Item, 0, len(videos))
		for _, v := range videos {
			items = append(items, v.Item())
		}
		resp.Analysis = h.analyzer.Analyze(c.Request.Context(), keyword, items)
	}

	c.JSON(http.StatusOK, resp)
}

// shouldAnalyze applies the user's content-filter-reminder toggle. Anonymous
// requests and preference lookup failures default to analyzing.
func (h *Handler) shouldAnalyze(c *gin.Context, _ string) bool {
	userID, ok := userIDParam(c.Query("user_id"))
	if !ok || h.prefs == nil {
		return true
	}
	pref, err := h.prefs.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("preference lookup failed", logger.Int64("user_id", userID), logger.Error(err))
		return true
	}
	return pref.EnableContentFilterReminder
}

// Video handles GET /api/v1/videos/:input where input is a BV id or any text
// containing one (a pasted URL, typically).
func (h *Handler) Video(c *gin.Context) {
	bvid, ok := bili.ExtractBVID(c.Param("input"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid BV id in input"})
		return
	}
	if h.bili == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "video lookup not configured"})
		return
	}

	video, err := h.bili.View(c.Request.Context(), bvid)
	if err != nil {
		var apiErr *bili.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusNotFound, gin.H{"error": apiErr.Error()})
			return
		}
		h.logger.Warn("video lookup failed", logger.String("bvid", bvid), logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "video lookup failed"})
		return
	}
	c.JSON(http.StatusOK, video)
}

// GetPreference handles GET /api/v1/preferences/:user_id.
func (h *Handler) GetPreference(c *gin.Context) {
	userID, ok := userIDParam(c.Param("user_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	pref, err := h.prefs.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get preference failed", logger.Int64("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preference lookup failed"})
		return
	}
	c.JSON(http.StatusOK, preferenceResponse(pref))
}

// UpdatePreferenceRequest is the body of PUT /api/v1/preferences/:user_id.
type UpdatePreferenceRequest struct {
	EnableLearningReminder      *bool `json:"enable_learning_reminder"`
	EnableContentFilterReminder *bool `json:"enable_content_filter_reminder"`
}

// UpdatePreference handles PUT /api/v1/preferences/:user_id.
func (h *Handler) UpdatePreference(c *gin.Context) {
	userID, ok := userIDParam(c.Param("user_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pref, err := h.prefs.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preference lookup failed"})
		return
	}
	if req.EnableLearningReminder != nil {
		pref.EnableLearningReminder = *req.EnableLearningReminder
	}
	if req.EnableContentFilterReminder != nil {
		pref.EnableContentFilterReminder = *req.EnableContentFilterReminder
	}

	if err := h.prefs.Update(c.Request.Context(), pref); err != nil {
		h.logger.Error("update preference failed", logger.Int64("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preference update failed"})
		return
	}
	c.JSON(http.StatusOK, preferenceResponse(pref))
}

// IgnoreKeywordRequest is the body of POST /api/v1/preferences/:user_id/ignore.
type IgnoreKeywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// IgnoreKeyword handles POST /api/v1/preferences/:user_id/ignore.
func (h *Handler) IgnoreKeyword(c *gin.Context) {
	userID, ok := userIDParam(c.Param("user_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req IgnoreKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.prefs.IgnoreKeyword(c.Request.Context(), userID, req.Keyword); err != nil {
		h.logger.Error("ignore keyword failed", logger.Int64("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ignore keyword failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Reminder handles GET /api/v1/reminder?user_id=...&keyword=...: whether the
// learning reminder should be shown for this search. The reminder is
// suppressed when the user turned it off, when they ignored this keyword, or
// when the keyword does not look like non-learning content.
func (h *Handler) Reminder(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword must not be empty"})
		return
	}

	show := h.shouldRemind(c, keyword)
	c.JSON(http.StatusOK, gin.H{"show": show, "keyword": keyword})
}

func (h *Handler) shouldRemind(c *gin.Context, keyword string) bool {
	userID, hasUser := userIDParam(c.Query("user_id"))
	if !hasUser {
		// Anonymous sessions never get reminders.
		return false
	}

	pref, err := h.prefs.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("preference lookup failed", logger.Int64("user_id", userID), logger.Error(err))
		return false
	}
	if !pref.EnableLearningReminder {
		return false
	}

	ignored, err := h.prefs.IsKeywordIgnored(c.Request.Context(), userID, keyword)
	if err != nil || ignored {
		return false
	}

	return h.analyzer.Keywords().IsNonLearning(keyword)
}

func userIDParam(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func preferenceResponse(pref *database.UserPreference) gin.H {
	return gin.H{
		"user_id":                        pref.UserID,
		"enable_learning_reminder":       pref.EnableLearningReminder,
		"enable_content_filter_reminder": pref.EnableContentFilterReminder,
		"ignored_keywords":               pref.IgnoredList(),
	}
}
