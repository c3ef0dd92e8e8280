// Package fsx 提供 scan 报告落地需要的原子写文件。
package fsx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// 测试通过替换它模拟 rename 失败。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径已存在但不是普通文件。
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望普通文件，实际 %s）", e.Path, e.Got)
}

// WriteJSON 把 v 以缩进 JSON 原子写入 path（同目录临时文件 + rename，已存在则覆盖）。
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, append(b, '\n'))
}

// WriteFileAtomic 原子写入 path；目标是目录或特殊文件时返回 PathTypeConflictError。
func WriteFileAtomic(path string, data []byte) error {
	path = filepath.Clean(path)
	if fi, err := os.Lstat(path); err == nil && !fi.Mode().IsRegular() {
		got := "dir"
		if !fi.IsDir() {
			got = fi.Mode().Type().String()
		}
		return &PathTypeConflictError{Path: path, Got: got}
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// 临时文件以 '.' 开头，避免出现在媒体库视图里。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFunc(tmpName, path); err != nil {
		return fmt.Errorf("写入 %s 失败：%w", path, err)
	}

	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
