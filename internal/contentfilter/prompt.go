package contentfilter

import (
	"fmt"
	"regexp"
	"strings"
)

// SystemPrompt is the system-role instruction sent with every escalation.
const SystemPrompt = "你是一个专业的内容分析助手，专门判断搜索内容是否与学习、教育、知识获取相关。请严格按照要求的格式回复。"

const (
	promptMaxItems  = 3
	promptDescLimit = 100
)

// Reply markers the parser scans for. The prompt instructs the model to use
// exactly these, but replies routinely deviate.
const (
	markerVerdict    = "判断结果:"
	markerConfidence = "置信度:"
	markerReason     = "理由:"
)

// BuildPrompt renders the semantic-analysis prompt embedding the query and up
// to three items' title, zone, and truncated description, closing with the
// fixed three-line reply format.
func BuildPrompt(query string, items []Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "请分析以下搜索内容是否与学习、教育、知识获取相关。\n\n搜索关键词: %s\n\n", query)

	if len(items) > 0 {
		b.WriteString("搜索结果中的视频信息:\n")
		for i := range min(promptMaxItems, len(items)) {
			item := items[i]
			title := item.Title
			if title == "" {
				title = "未知"
			}
			fmt.Fprintf(&b, "%d. 标题: %s\n", i+1, title)

			label := item.Zone
			if label == "" {
				label = item.TName
			}
			if label != "" {
				fmt.Fprintf(&b, "   分区: %s\n", label)
			}
			if item.Desc != "" {
				fmt.Fprintf(&b, "   简介: %s...\n", truncateRunes(item.Desc, promptDescLimit))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("请判断这些内容是否与学习相关，并给出判断理由。\n" +
		"回复格式：\n" +
		"判断结果: [是/否]\n" +
		"置信度: [0-1之间的数值]\n" +
		"理由: [详细说明]")

	return b.String()
}

// Judgment is the parsed form of a free-text escalation reply.
type Judgment struct {
	IsLearning *bool   `json:"is_learning"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

var confidencePattern = regexp.MustCompile(`[\d.]+`)

// ParseReply extracts a Judgment from a free-form reply. It scans for the
// marker lines first; if the verdict marker is absent it falls back to a
// vocabulary scan of the full text. When no signal is found the result keeps
// confidence 0.5 and a nil polarity.
func ParseReply(raw string) Judgment {
	j := Judgment{Confidence: 0.5, Reason: strings.TrimSpace(raw)}

	// Tolerate fullwidth colons in the markers.
	normalized := strings.ReplaceAll(raw, "：", ":")

	if !strings.Contains(normalized, markerVerdict) {
		lowered := strings.ToLower(raw)
		switch {
		case containsAny(lowered, "学习", "教育", "知识", "教程", "课程"):
			j.IsLearning = boolPtr(true)
		case containsAny(lowered, "娱乐", "游戏", "搞笑", "非学习"):
			j.IsLearning = boolPtr(false)
		}
		return j
	}

	for _, line := range strings.Split(normalized, "\n") {
		switch {
		case strings.Contains(line, markerVerdict):
			if strings.Contains(line, "是") {
				j.IsLearning = boolPtr(true)
			} else if strings.Contains(line, "否") {
				j.IsLearning = boolPtr(false)
			}
		case strings.Contains(line, markerConfidence):
			if num := confidencePattern.FindString(line); num != "" {
				var c float64
				if _, err := fmt.Sscanf(num, "%f", &c); err == nil {
					j.Confidence = c
				}
			}
		case strings.Contains(line, markerReason):
			_, after, _ := strings.Cut(line, markerReason)
			j.Reason = strings.TrimSpace(after)
		}
	}

	return j
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
