package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestVideos_ExcludeDirsAndHidden(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "temp", "A-01.mp4"))
	touch(t, filepath.Join(root, ".trash", "C-03.mp4"))
	touch(t, filepath.Join(root, "ok", "B-02.mkv"))
	touch(t, filepath.Join(root, "ok", "ignore.txt"))

	got, err := Videos(context.Background(), root, []string{"temp"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个视频文件，实际 %d：%v", len(got), got)
	}
	wantRel := filepath.Join("ok", "B-02.mkv")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
	if got[0].Base != "B-02" || got[0].Size != 1 {
		t.Fatalf("文件信息不符：%+v", got[0])
	}
}

func TestVideos_ExtCaseInsensitiveAndSorted(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "Y.WMV"))
	touch(t, filepath.Join(root, "a", "X.MP4"))

	got, err := Videos(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个视频文件，实际 %d", len(got))
	}
	if got[0].Ext != ".mp4" || got[1].Ext != ".wmv" {
		t.Fatalf("期望按 RelPath 排序且扩展名小写，实际 %q %q", got[0].Ext, got[1].Ext)
	}
}

func TestVideos_RootMustBeDir(t *testing.T) {
	root := t.TempDir()
	f := filepath.Join(root, "file.mp4")
	touch(t, f)

	if _, err := Videos(context.Background(), f, nil); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if _, err := Videos(context.Background(), filepath.Join(root, "missing"), nil); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestVideos_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A-01.mp4"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Videos(ctx, root, nil); err != context.Canceled {
		t.Fatalf("期望 context.Canceled，实际 %v", err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
