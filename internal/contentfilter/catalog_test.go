package contentfilter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
)

func TestParseCatalog_SkipsCommentsAndMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"# comment line",
		"",
		"learning_positive:教程,学习, 课程 ,",
		"no colon here",
		"game_negative:游戏",
	}, "\n")

	c := contentfilter.ParseCatalog(strings.NewReader(input))

	if c.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", c.Len())
	}
	got := c.Keywords("learning_positive")
	want := []string{"教程", "学习", "课程"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParseCatalog_RedeclarationOverwrites(t *testing.T) {
	input := "game_negative:游戏\ngame_negative:电竞,手游\n"
	c := contentfilter.ParseCatalog(strings.NewReader(input))

	if c.Len() != 1 {
		t.Fatalf("expected 1 category, got %d", c.Len())
	}
	got := c.Keywords("game_negative")
	if len(got) != 2 || got[0] != "电竞" || got[1] != "手游" {
		t.Errorf("expected [电竞 手游], got %v", got)
	}
}

func TestCatalog_KeywordsLookupIsCaseInsensitive(t *testing.T) {
	c := contentfilter.ParseCatalog(strings.NewReader("Tech_Positive:python\n"))

	if got := c.Keywords("TECH_POSITIVE"); len(got) != 1 || got[0] != "python" {
		t.Errorf("expected [python], got %v", got)
	}
}

func TestCatalog_SerializeRoundTrip(t *testing.T) {
	input := "learning_positive:教程,学习\ngame_negative:游戏\nextra_category:something\n"
	c := contentfilter.ParseCatalog(strings.NewReader(input))

	var buf bytes.Buffer
	if err := c.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if buf.String() != input {
		t.Errorf("round trip mismatch:\nwant %q\ngot  %q", input, buf.String())
	}

	again := contentfilter.ParseCatalog(&buf)
	if again.Len() != c.Len() {
		t.Errorf("reparse category count: expected %d, got %d", c.Len(), again.Len())
	}
}

func TestCatalog_CategoriesPreserveDeclarationOrder(t *testing.T) {
	input := "zzz_first:a\naaa_second:b\n"
	c := contentfilter.ParseCatalog(strings.NewReader(input))

	got := c.Categories()
	if len(got) != 2 || got[0] != "zzz_first" || got[1] != "aaa_second" {
		t.Errorf("expected declaration order [zzz_first aaa_second], got %v", got)
	}
}

func TestNewCatalog_EmptyIsUsable(t *testing.T) {
	c := contentfilter.NewCatalog(nil)
	if !c.Empty() {
		t.Error("expected empty catalog")
	}
	if got := c.Keywords("anything"); got != nil {
		t.Errorf("expected nil keywords, got %v", got)
	}
}
