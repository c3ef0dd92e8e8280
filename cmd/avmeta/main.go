package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/John-Robertt/avmeta/internal/config"
	"github.com/John-Robertt/avmeta/internal/fetch"
	"github.com/John-Robertt/avmeta/internal/metrics"
	"github.com/John-Robertt/avmeta/internal/provider"
	"github.com/John-Robertt/avmeta/internal/provider/javdb"
	"github.com/John-Robertt/avmeta/internal/provider/javlibrary"
	"github.com/John-Robertt/avmeta/internal/sites"
)

// errPartial 表示命令本身完成了，但结果里有失败条目（退出码 1，不再额外打印）。
var errPartial = errors.New("partial failure")

// CLI 是 avmeta 的完整命令结构。
type CLI struct {
	Globals

	Search  SearchCmd  `cmd:"" help:"按标题或编号搜索候选"`
	Resolve ResolveCmd `cmd:"" help:"按候选 ID 解析元数据"`
	Images  ImagesCmd  `cmd:"" help:"按候选 ID 收集图片"`
	Scan    ScanCmd    `cmd:"" help:"扫描目录，按文件名中的编号批量搜索"`
	Serve   ServeCmd   `cmd:"" help:"启动只读 HTTP 接口"`
}

// Globals 是所有子命令共享的参数。空值表示 "未指定"，交给配置文件决定。
type Globals struct {
	Config   string `short:"c" help:"配置文件路径（默认读取 ./avmeta.yaml，不存在则使用内置默认值）"`
	LogLevel string `help:"日志级别" enum:"debug,info,warn,error" default:"info"`
	LogJSON  bool   `help:"以 JSON 格式输出日志（stderr）"`
	JSON     bool   `help:"即使 stdout 是终端也输出 JSON"`

	Family     string `short:"f" help:"catalog family（javlibrary|javdb）"`
	Naming     string `help:"演员名顺序" enum:",source,japanese,western" default:""`
	ImageKinds string `help:"预览图输出方式：dual=Primary/Backdrop 各一条，strict=合并为一条" enum:",dual,strict" default:""`
	Proxy      string `help:"HTTP 代理 URL"`
}

// env 是运行期依赖（不来自命令行）。
type env struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	// tty 为 true 时 stdout 输出表格，否则输出 JSON。
	tty bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("avmeta"),
		kong.Description("Catalog search & metadata resolution."),
		kong.UsageOnError(),
	)

	e := &env{
		ctx:    ctx,
		stdout: os.Stdout,
		stderr: os.Stderr,
		tty:    !cli.JSON && isTerminal(os.Stdout),
	}
	slog.SetDefault(newLogger(os.Stderr, cli.LogLevel, cli.LogJSON))

	if err := kctx.Run(&cli.Globals, e); err != nil {
		if !errors.Is(err, errPartial) {
			fmt.Fprintf(os.Stderr, "avmeta: %v\n", err)
		}
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string, jsonOut bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if jsonOut {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
	return slog.New(humanlog.NewHandler(w, &humanlog.Options{Level: lvl}))
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// cliArgs 把命令行参数转换为 config 的覆盖项（只有显式指定的才覆盖）。
func (g *Globals) cliArgs() config.CLIArgs {
	a := config.CLIArgs{ConfigPath: g.Config}
	if g.Family != "" {
		a.Family, a.FamilySet = g.Family, true
	}
	if g.Naming != "" {
		a.NamingStyle, a.NamingStyleSet = g.Naming, true
	}
	if g.ImageKinds != "" {
		a.StrictKinds, a.StrictKindsSet = g.ImageKinds == "strict", true
	}
	if g.Proxy != "" {
		a.ProxyURL, a.ProxyURLSet = g.Proxy, true
	}
	return a
}

// runtime 是一次命令执行所需的全部组件。
type runtime struct {
	eff     config.EffectiveConfig
	svc     *provider.Service
	promReg *prometheus.Registry
	log     *slog.Logger
}

func setup(args config.CLIArgs) (*runtime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("读取当前目录失败：%w", err)
	}
	eff, err := config.LoadEffective(cwd, args)
	if err != nil {
		return nil, err
	}
	return newRuntime(eff, slog.Default())
}

func newRuntime(eff config.EffectiveConfig, log *slog.Logger) (*runtime, error) {
	reg := sites.Default()
	if len(eff.Families) > 0 {
		r, err := reg.Override(eff.Families)
		if err != nil {
			return nil, &config.Error{Code: config.ErrCodeInvalid, Path: eff.Source, Err: err}
		}
		reg = r
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	f, err := fetch.New(fetch.Options{
		ProxyURL:      eff.ProxyURL,
		Timeout:       eff.Timeout,
		RetryMax:      eff.RetryMax,
		RatePerSecond: eff.RatePerSecond,
		Burst:         1,
	}, m, log)
	if err != nil {
		return nil, &config.Error{Code: config.ErrCodeInvalid, Path: eff.Source, Err: err}
	}

	libVariants, err := reg.Variants(javlibrary.Family)
	if err != nil {
		return nil, err
	}
	lib, err := javlibrary.New(f, libVariants, javlibrary.Options{
		NamingStyle:      eff.NamingStyle,
		StrictImageKinds: eff.StrictImageKinds,
	}, log)
	if err != nil {
		return nil, err
	}

	dbVariants, err := reg.Variants(javdb.Family)
	if err != nil {
		return nil, err
	}
	db, err := javdb.New(f, dbVariants, javdb.Options{
		NamingStyle:      eff.NamingStyle,
		StrictImageKinds: eff.StrictImageKinds,
	}, log)
	if err != nil {
		return nil, err
	}

	providers, err := provider.NewRegistry(lib, db)
	if err != nil {
		return nil, err
	}

	log.Debug("runtime ready", "config", eff.Source, "family", eff.Family, "naming", eff.NamingStyle.String(), "strict_kinds", eff.StrictImageKinds)
	return &runtime{
		eff:     eff,
		svc:     provider.NewService(providers, reg, m, log),
		promReg: promReg,
		log:     log,
	}, nil
}
