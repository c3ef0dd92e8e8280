package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/John-Robertt/avmeta/internal/domain"
)

const (
	// ErrCodeNotFound 表示通过 --config 显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultFileName 是未指定 --config 时在 cwd 下查找的文件名（可选）。
	DefaultFileName = "avmeta.yaml"
	// DefaultFamily 是 family 的最终默认值（当 CLI 与配置文件都未指定时）。
	DefaultFamily = "javlibrary"
	// DefaultConcurrency 是批量扫描并发的内置默认值。
	DefaultConcurrency = 4
	// DefaultListen 是 serve 子命令的默认监听地址。
	DefaultListen = "127.0.0.1:8089"
	// DefaultRatePerSecond 是每个 host 的默认请求速率。
	DefaultRatePerSecond = 1.0

	envPrefix = "AVMETA"
)

// CLIArgs 保留 CLI 覆盖项以及 "是否显式指定" 的信息。
// 这能保证覆盖优先级可实现：例如 --strict-kinds=false 必须能覆盖配置里的 true。
type CLIArgs struct {
	ConfigPath string

	Family    string
	FamilySet bool

	NamingStyle    string
	NamingStyleSet bool

	StrictKinds    bool
	StrictKindsSet bool

	ProxyURL    string
	ProxyURLSet bool

	Concurrency    int
	ConcurrencySet bool

	Listen    string
	ListenSet bool
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Source 是实际读取的配置文件；没有读取任何文件时为空。
	Source string

	Family           string
	NamingStyle      domain.NamingStyle
	StrictImageKinds bool

	ProxyURL      string
	Timeout       time.Duration
	RetryMax      int
	RatePerSecond float64

	Concurrency int
	ExcludeDirs []string
	Listen      string

	// Families 是对内置站点注册表的覆盖（按 family 整体替换）。
	Families map[string][]domain.SiteVariant
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("family", DefaultFamily)
	v.SetDefault("naming_style", "source")
	v.SetDefault("images.strict_kinds", false)
	v.SetDefault("proxy.url", "")
	v.SetDefault("http.timeout", "20s")
	v.SetDefault("http.retry_max", 2)
	v.SetDefault("http.rate_per_second", DefaultRatePerSecond)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("exclude_dirs", []string{})
	v.SetDefault("listen", DefaultListen)

	// AVMETA_PROXY_URL -> proxy.url
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadEffective 发现并读取配置文件，然后与环境变量、CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在，否则 config_not_found
// 2) 否则尝试读取 <cwd>/avmeta.yaml（可选，不存在只用默认值）
//
// 覆盖优先级：CLI > 环境变量 AVMETA_* > 配置文件 > 内置默认。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	v := newViper()

	cfgPath := ""
	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = absCleanFrom(cwdAbs, p)
		if _, err := os.Stat(cfgPath); err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	} else {
		candidate := filepath.Join(cwdAbs, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			cfgPath = candidate
		}
	}

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	return merge(v, cli, cfgPath)
}

func merge(v *viper.Viper, cli CLIArgs, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	family := strings.ToLower(strings.TrimSpace(v.GetString("family")))
	if cli.FamilySet {
		family = strings.ToLower(strings.TrimSpace(cli.Family))
	}
	if family == "" {
		return invalid(errors.New("family 不能为空"))
	}

	namingRaw := v.GetString("naming_style")
	if cli.NamingStyleSet {
		namingRaw = cli.NamingStyle
	}
	naming, err := domain.ParseNamingStyle(namingRaw)
	if err != nil {
		return invalid(err)
	}

	strict := v.GetBool("images.strict_kinds")
	if cli.StrictKindsSet {
		strict = cli.StrictKinds
	}

	proxyURL := strings.TrimSpace(v.GetString("proxy.url"))
	if cli.ProxyURLSet {
		proxyURL = strings.TrimSpace(cli.ProxyURL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid(fmt.Errorf("proxy.url 无效：%q", proxyURL))
		}
	}

	timeout := v.GetDuration("http.timeout")
	if timeout <= 0 {
		return invalid(fmt.Errorf("http.timeout 必须为正数：%q", v.GetString("http.timeout")))
	}
	retryMax := v.GetInt("http.retry_max")
	if retryMax < 0 {
		return invalid(fmt.Errorf("http.retry_max 不能为负数：%d", retryMax))
	}
	rps := v.GetFloat64("http.rate_per_second")
	if rps < 0 {
		return invalid(fmt.Errorf("http.rate_per_second 不能为负数：%v", rps))
	}

	concurrency := v.GetInt("concurrency")
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	}
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	listen := strings.TrimSpace(v.GetString("listen"))
	if cli.ListenSet {
		listen = strings.TrimSpace(cli.Listen)
	}
	if listen == "" {
		listen = DefaultListen
	}

	var families map[string][]domain.SiteVariant
	if v.IsSet("families") {
		if err := v.UnmarshalKey("families", &families); err != nil {
			return invalid(fmt.Errorf("families 无效：%w", err))
		}
	}

	return EffectiveConfig{
		Source:           cfgPath,
		Family:           family,
		NamingStyle:      naming,
		StrictImageKinds: strict,
		ProxyURL:         proxyURL,
		Timeout:          timeout,
		RetryMax:         retryMax,
		RatePerSecond:    rps,
		Concurrency:      concurrency,
		ExcludeDirs:      append([]string(nil), v.GetStringSlice("exclude_dirs")...),
		Listen:           listen,
		Families:         families,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
