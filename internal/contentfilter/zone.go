package contentfilter

import (
	"fmt"
	"strings"
)

// Fixed taxonomy label lists. Scan order is significant: the learning list is
// checked first, and within each list the first containment hit wins.
var (
	learningZones = []string{
		"知识", "科普", "教育", "学习", "课堂", "讲座", "培训",
		"编程", "开发", "技术", "科技", "数码", "工程",
		"数学", "物理", "化学", "生物", "历史", "地理",
		"语言", "英语", "日语", "考试", "考研",
	}

	nonLearningZones = []string{
		"游戏", "娱乐", "搞笑", "鬼畜", "音乐", "舞蹈",
		"生活", "美食", "时尚", "美妆", "动物", "宠物",
		"体育", "运动", "汽车", "旅游", "影视", "动画",
		"番剧", "电影", "电视剧", "综艺", "直播",
	}
)

// DefaultZoneConfidence is the confidence assigned to any zone list hit.
const DefaultZoneConfidence = 0.9

// ZoneMatcher classifies platform taxonomy labels (video zone names) against
// the fixed learning / non-learning lists.
type ZoneMatcher struct {
	confidence float64
}

// NewZoneMatcher creates a zone matcher. confidence <= 0 selects the default.
func NewZoneMatcher(confidence float64) *ZoneMatcher {
	if confidence <= 0 {
		confidence = DefaultZoneConfidence
	}
	return &ZoneMatcher{confidence: confidence}
}

// Match checks label against the learning list, then the non-learning list,
// using case-insensitive substring containment. No hit in either list yields
// an indeterminate verdict.
func (z *ZoneMatcher) Match(label string) Verdict {
	v := Verdict{Method: MethodZone}
	if label == "" {
		return v
	}

	folded := foldText(label)

	for _, zone := range learningZones {
		if containsFolded(folded, zone) {
			v.IsLearning = boolPtr(true)
			v.Confidence = z.confidence
			v.Reason = fmt.Sprintf("属于学习相关分区: %s", label)
			return v
		}
	}

	for _, zone := range nonLearningZones {
		if containsFolded(folded, zone) {
			v.IsLearning = boolPtr(false)
			v.Confidence = z.confidence
			v.Reason = fmt.Sprintf("属于非学习相关分区: %s", label)
			return v
		}
	}

	return v
}

func containsFolded(foldedLabel, zone string) bool {
	return zone != "" && strings.Contains(foldedLabel, zone)
}
