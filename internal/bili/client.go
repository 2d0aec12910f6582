// Package bili is a minimal client for the bilibili web API endpoints the
// content analyzer consumes: video search and single-video metadata.
package bili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
)

const (
	searchPath = "/x/web-interface/search/type"
	viewPath   = "/x/web-interface/view"

	defaultReferer = "https://www.bilibili.com"
)

// Config holds client settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Cookie    string
	Timeout   time.Duration
}

// Client calls the bilibili web API with bounded timeouts. Failures are
// returned to the caller; they never abort the surrounding analysis.
type Client struct {
	baseURL   string
	userAgent string
	cookie    string
	http      *http.Client
	logger    logger.Logger
}

// NewClient creates a bilibili API client.
func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		cookie:    cfg.Cookie,
		http:      &http.Client{Timeout: timeout},
		logger:    log,
	}
}

// APIError is a non-zero business code in a bilibili response envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bilibili api error %d: %s", e.Code, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// SearchResult is one video entry from the search endpoint.
type SearchResult struct {
	BVID     string `json:"bvid"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	TypeName string `json:"typename"`
	Tag      string `json:"tag"`
	Desc     string `json:"description"`
	Duration string `json:"duration"`
}

// Item maps a search result onto the analyzer's item schema.
func (r SearchResult) Item() contentfilter.Item {
	var tags []string
	for _, t := range strings.Split(r.Tag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return contentfilter.Item{
		Title: r.Title,
		TName: r.TypeName,
		Desc:  r.Desc,
		Tags:  tags,
	}
}

type searchData struct {
	Result []SearchResult `json:"result"`
}

// Search queries the video search endpoint. Titles come back with the search
// highlight markup stripped, and entries with an unknown duration are dropped.
func (c *Client) Search(ctx context.Context, keyword string) ([]SearchResult, error) {
	params := url.Values{
		"search_type": {"video"},
		"keyword":     {keyword},
		"order":       {"totalrank"},
	}

	var data searchData
	if err := c.get(ctx, searchPath, params, &data); err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	results := make([]SearchResult, 0, len(data.Result))
	for _, r := range data.Result {
		if r.Duration == "" || r.Duration == "0:00" || r.Duration == "--:--" {
			continue
		}
		r.Title = stripHighlight(r.Title)
		results = append(results, r)
	}

	c.logger.Debug("bilibili search complete",
		logger.String("keyword", keyword),
		logger.Int("results", len(results)))
	return results, nil
}

// Video is the metadata of a single video from the view endpoint.
type Video struct {
	BVID     string `json:"bvid"`
	Title    string `json:"title"`
	TName    string `json:"tname"`
	Desc     string `json:"desc"`
	Pic      string `json:"pic"`
	Duration int64  `json:"duration"`
	Owner    struct {
		Name string `json:"name"`
	} `json:"owner"`
}

// Item maps video metadata onto the analyzer's item schema.
func (v *Video) Item() contentfilter.Item {
	return contentfilter.Item{
		Title: v.Title,
		TName: v.TName,
		Desc:  v.Desc,
	}
}

// View fetches metadata for one video by BV id.
func (c *Client) View(ctx context.Context, bvid string) (*Video, error) {
	params := url.Values{"bvid": {bvid}}

	var video Video
	if err := c.get(ctx, viewPath, params, &video); err != nil {
		return nil, fmt.Errorf("view %s: %w", bvid, err)
	}
	return &video, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", defaultReferer)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Message: env.Message}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

var (
	highlightPattern = regexp.MustCompile(`<em class="keyword">|</em>`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)

	bvidDirect   = regexp.MustCompile(`^BV[0-9A-Za-z]{10}$`)
	bvidPatterns = []*regexp.Regexp{
		regexp.MustCompile(`bilibili\.com/video/(BV[0-9A-Za-z]{10})(?:[/?]|$)`),
		regexp.MustCompile(`/video/(BV[0-9A-Za-z]{10})(?:[/?]|$)`),
		regexp.MustCompile(`[?&](?:bv|BV)=(BV[0-9A-Za-z]{10})`),
		regexp.MustCompile(`b23\.tv.*/(BV[0-9A-Za-z]{10})`),
	}
	bvidAnywhere = regexp.MustCompile(`BV[0-9A-Za-z]{10}`)
)

func stripHighlight(title string) string {
	return tagPattern.ReplaceAllString(highlightPattern.ReplaceAllString(title, ""), "")
}

// ExtractBVID finds a BV id in user input: a bare id, a video URL in any of
// the common forms, or an id embedded in arbitrary text. Original casing is
// preserved. Returns false when no complete id is present.
func ExtractBVID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	if bvidDirect.MatchString(input) {
		return input, true
	}
	for _, p := range bvidPatterns {
		if m := p.FindStringSubmatch(input); m != nil {
			return m[1], true
		}
	}
	if m := bvidAnywhere.FindString(input); m != "" {
		return m, true
	}
	return "", false
}
