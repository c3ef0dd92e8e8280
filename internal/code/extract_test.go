package code

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/avmeta/internal/domain"
)

func video(dir, base string) domain.VideoFile {
	return domain.VideoFile{
		AbsPath: filepath.Join(string(filepath.Separator), "lib", dir, base+".mp4"),
		Base:    base,
	}
}

func TestFromFile_NormalizeVariants(t *testing.T) {
	for _, base := range []string{"cawd_895", "CAWD.895", "cawd 895 uncensored", "[x] cawd-895"} {
		got, err := FromFile(video("x", base))
		if err != nil {
			t.Fatalf("%q 不期望错误：%v", base, err)
		}
		if got != (domain.Token{Prefix: "CAWD", Number: "895"}) {
			t.Fatalf("%q 期望 CAWD-895，实际 %q", base, got)
		}
	}
}

func TestFromFile_SameCodeInDirIsNotAmbiguous(t *testing.T) {
	got, err := FromFile(video("CAWD-895", "cawd-895-cd1"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.String() != "CAWD-895" {
		t.Fatalf("期望 CAWD-895，实际 %q", got)
	}
}

func TestFromFile_Ambiguous(t *testing.T) {
	_, err := FromFile(video("ABCD-123", "CAWD-895"))

	var ue *UnmatchedError
	if !errors.As(err, &ue) || ue.Kind != "ambiguous" {
		t.Fatalf("期望 ambiguous，实际 err=%v", err)
	}
	if len(ue.Candidates) != 2 || ue.Candidates[0].String() != "ABCD-123" {
		t.Fatalf("候选应排序：%v", ue.Candidates)
	}
}

func TestFromFile_NoMatch(t *testing.T) {
	_, err := FromFile(video("x", "holiday"))

	var ue *UnmatchedError
	if !errors.As(err, &ue) || ue.Kind != "no_match" {
		t.Fatalf("期望 no_match，实际 err=%v", err)
	}
}

func TestFromFile_FullwidthAndDigitRun(t *testing.T) {
	got, err := FromFile(video("x", "ＣＡＷＤ－８９５"))
	if err != nil {
		t.Fatalf("全角文件名不期望错误：%v", err)
	}
	if got.String() != "CAWD-895" {
		t.Fatalf("期望 CAWD-895，实际 %q", got)
	}

	// 数字段超过 5 位不是编号。
	if _, err := FromFile(video("x", "cawd-8951234")); err == nil {
		t.Fatalf("超长数字段不应被识别")
	}
}

func TestFromFile_TokenFeedsParseQuery(t *testing.T) {
	tok, err := FromFile(video("x", "ssis_001 4k"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	effective, got, ok := ParseQuery(tok.QueryText())
	if !ok || got != tok {
		t.Fatalf("QueryText 应派生出同一个 Token：%+v -> %+v ok=%v", tok, got, ok)
	}
	if effective != "SSIS-001" {
		t.Fatalf("effective 不符：%q", effective)
	}
}
