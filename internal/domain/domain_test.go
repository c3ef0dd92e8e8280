package domain

import (
	"encoding/json"
	"testing"
)

func TestNamingStyle_Apply(t *testing.T) {
	cases := []struct {
		style NamingStyle
		in    string
		want  string
	}{
		{NamingWestern, "Yamada Taro", "Taro Yamada"},
		{NamingWestern, "Aoi", "Aoi"},
		{NamingWestern, "A B C", "C B A"},
		{NamingSource, "Yamada Taro", "Yamada Taro"},
	}
	for _, c := range cases {
		if got := c.style.Apply(c.in); got != c.want {
			t.Fatalf("%s.Apply(%q)=%q，期望 %q", c.style, c.in, got, c.want)
		}
	}
}

func TestParseNamingStyle(t *testing.T) {
	if s, err := ParseNamingStyle("Western"); err != nil || s != NamingWestern {
		t.Fatalf("期望 western，实际 %v err=%v", s, err)
	}
	if s, err := ParseNamingStyle(""); err != nil || s != NamingSource {
		t.Fatalf("空串应为 source，实际 %v err=%v", s, err)
	}
	if _, err := ParseNamingStyle("eastern"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestImageKind_Text(t *testing.T) {
	b, err := json.Marshal(ImageRecord{URL: "u", Kind: ImagePrimary | ImageBackdrop})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(b) != `{"url":"u","kind":"primary,backdrop"}` {
		t.Fatalf("JSON 不符合预期：%s", b)
	}

	var k ImageKind
	if err := k.UnmarshalText([]byte("backdrop")); err != nil || k != ImageBackdrop {
		t.Fatalf("期望 backdrop，实际 %v err=%v", k, err)
	}
	if err := k.UnmarshalText([]byte("thumb")); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestMetadataRecord_AddGenre(t *testing.T) {
	var r MetadataRecord
	for _, g := range []string{"Drama", " Drama ", "", "Comedy", "Drama"} {
		r.AddGenre(g)
	}
	if len(r.Genres) != 2 || r.Genres[0] != "Drama" || r.Genres[1] != "Comedy" {
		t.Fatalf("genres 去重/保序不符合预期：%v", r.Genres)
	}
}

func TestToken_QueryText(t *testing.T) {
	tok := Token{Prefix: "CAWD", Number: "895"}
	if got := tok.QueryText(); got != "CAWD 895" {
		t.Fatalf("期望 %q，实际 %q", "CAWD 895", got)
	}
	if got := tok.String(); got != "CAWD-895" {
		t.Fatalf("期望 %q，实际 %q", "CAWD-895", got)
	}
}
