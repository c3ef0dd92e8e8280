package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/John-Robertt/avmeta/internal/domain"
)

func TestLoadEffective_DefaultsWithoutFile(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Source != "" {
		t.Fatalf("期望未读取配置文件，实际 source=%q", eff.Source)
	}
	if eff.Family != DefaultFamily {
		t.Fatalf("期望 family=%q，实际=%q", DefaultFamily, eff.Family)
	}
	if eff.NamingStyle != domain.NamingSource {
		t.Fatalf("期望 naming=source，实际=%v", eff.NamingStyle)
	}
	if eff.Concurrency != DefaultConcurrency {
		t.Fatalf("期望 concurrency=%d，实际=%d", DefaultConcurrency, eff.Concurrency)
	}
	if eff.Timeout != 20*time.Second || eff.RetryMax != 2 {
		t.Fatalf("HTTP 默认值不符：timeout=%v retry=%d", eff.Timeout, eff.RetryMax)
	}
	if eff.Listen != DefaultListen {
		t.Fatalf("期望 listen=%q，实际=%q", DefaultListen, eff.Listen)
	}
}

func TestLoadEffective_ExplicitConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{ConfigPath: "missing.yaml"})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_ReadsCwdFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte(`
naming_style: western
images:
  strict_kinds: true
http:
  timeout: 5s
  retry_max: 0
  rate_per_second: 0.5
concurrency: 100
exclude_dirs: [trash, "@eaDir"]
`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Source != filepath.Join(cwd, DefaultFileName) {
		t.Fatalf("source 不符：%q", eff.Source)
	}
	if eff.NamingStyle != domain.NamingWestern {
		t.Fatalf("期望 naming=western，实际=%v", eff.NamingStyle)
	}
	if !eff.StrictImageKinds {
		t.Fatalf("期望 strict_kinds=true")
	}
	if eff.Timeout != 5*time.Second || eff.RetryMax != 0 || eff.RatePerSecond != 0.5 {
		t.Fatalf("HTTP 配置不符：timeout=%v retry=%d rps=%v", eff.Timeout, eff.RetryMax, eff.RatePerSecond)
	}
	// 超出范围截断到 32。
	if eff.Concurrency != 32 {
		t.Fatalf("期望 concurrency=32，实际=%d", eff.Concurrency)
	}
	if len(eff.ExcludeDirs) != 2 || eff.ExcludeDirs[1] != "@eaDir" {
		t.Fatalf("exclude_dirs 不符：%v", eff.ExcludeDirs)
	}
}

func TestLoadEffective_CLIOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "custom.yaml"), []byte(`
family: javdb
images:
  strict_kinds: true
`))

	eff, err := LoadEffective(cwd, CLIArgs{ConfigPath: "custom.yaml"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Family != "javdb" || !eff.StrictImageKinds {
		t.Fatalf("未读取到配置文件：family=%q strict=%v", eff.Family, eff.StrictImageKinds)
	}

	// CLI 显式指定，则覆盖配置文件（包括 false）。
	eff2, err := LoadEffective(cwd, CLIArgs{
		ConfigPath:     "custom.yaml",
		Family:         "JavLibrary",
		FamilySet:      true,
		StrictKinds:    false,
		StrictKindsSet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff2.Family != "javlibrary" {
		t.Fatalf("期望 family=javlibrary，实际=%q", eff2.Family)
	}
	if eff2.StrictImageKinds {
		t.Fatalf("期望 --strict-kinds=false 覆盖配置文件")
	}
}

func TestLoadEffective_EnvOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte("proxy:\n  url: http://127.0.0.1:1\n"))
	t.Setenv("AVMETA_PROXY_URL", "http://127.0.0.1:7890")

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ProxyURL != "http://127.0.0.1:7890" {
		t.Fatalf("期望环境变量覆盖 proxy.url，实际=%q", eff.ProxyURL)
	}
}

func TestLoadEffective_FamilyOverrides(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte(`
families:
  javlibrary:
    - name: mirror
      base_url: https://mirror.example
      search_url: https://mirror.example/en/vl_searchbyid.php?keyword=
      item_path: /en/?v=
`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	vs := eff.Families["javlibrary"]
	if len(vs) != 1 {
		t.Fatalf("期望 1 个 variant，实际 %d", len(vs))
	}
	if vs[0].BaseURL != "https://mirror.example" || vs[0].ItemPath != "/en/?v=" {
		t.Fatalf("variant 解析不符：%+v", vs[0])
	}
}

func TestLoadEffective_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"naming":  "naming_style: klingon\n",
		"proxy":   "proxy:\n  url: \"http://[::1\"\n",
		"timeout": "http:\n  timeout: -1s\n",
		"retry":   "http:\n  retry_max: -1\n",
		"syntax":  "naming_style: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, filepath.Join(cwd, DefaultFileName), []byte(body))

			_, err := LoadEffective(cwd, CLIArgs{})
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
