package contentfilter_test

import (
	"testing"

	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
)

func TestZoneMatcher_Match(t *testing.T) {
	z := contentfilter.NewZoneMatcher(0)

	cases := []struct {
		name  string
		label string
		want  *bool // nil means indeterminate
	}{
		{"learning zone", "知识", boolPtr(true)},
		{"learning zone substring", "校园学习", boolPtr(true)},
		{"non-learning zone", "游戏", boolPtr(false)},
		{"non-learning zone substring", "网络游戏", boolPtr(false)},
		{"learning list checked first", "游戏编程", boolPtr(true)},
		{"unknown label", "随便什么", nil},
		{"empty label", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := z.Match(tc.label)
			if tc.want == nil {
				if !v.Indeterminate() {
					t.Fatalf("expected indeterminate verdict for %q, got %+v", tc.label, v)
				}
				return
			}
			if v.IsLearning == nil {
				t.Fatalf("expected verdict for %q, got indeterminate", tc.label)
			}
			if *v.IsLearning != *tc.want {
				t.Errorf("label %q: expected learning=%v, got %v", tc.label, *tc.want, *v.IsLearning)
			}
			if v.Confidence != contentfilter.DefaultZoneConfidence {
				t.Errorf("label %q: expected confidence %v, got %v",
					tc.label, contentfilter.DefaultZoneConfidence, v.Confidence)
			}
		})
	}
}

func TestZoneMatcher_CustomConfidence(t *testing.T) {
	z := contentfilter.NewZoneMatcher(0.7)
	v := z.Match("科技")
	if v.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", v.Confidence)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
