// Package app はCLIの初期化と各サブコマンドの実行を提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/siteuser/internal/config"
	"github.com/hitoshi/siteuser/internal/database"
	"github.com/hitoshi/siteuser/internal/loader"
	"github.com/hitoshi/siteuser/internal/logger"
	"github.com/hitoshi/siteuser/internal/metrics"
	"github.com/hitoshi/siteuser/internal/report"
	"github.com/hitoshi/siteuser/internal/repository"
	"github.com/hitoshi/siteuser/internal/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// App はCLI実行中の状態を保持する。
// レポートはstdoutへ、ログはstderrへ出力する。
type App struct {
	stdout  io.Writer
	stderr  io.Writer
	envFile string

	cfg      *config.Config
	registry *prometheus.Registry
	recorder metrics.Recorder
}

// New は新しいAppを生成する。
func New(stdout, stderr io.Writer) *App {
	registry := prometheus.NewRegistry()
	return &App{
		stdout:   stdout,
		stderr:   stderr,
		registry: registry,
		recorder: metrics.NewCollector(registry),
	}
}

// Init はdotenvファイルと環境変数から設定を読み込み、JSON構造化ログをセットアップする。
func (a *App) Init() error {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(a.stderr, slog.LevelInfo)

	// 2. dotenvファイルと環境変数から設定を読み込む
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	// 3. 設定されたレベルでログを再設定する
	logger.SetupDefault(a.stderr, logger.ParseLevel(cfg.LogLevel))
	return nil
}

// Run はCLIのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMを受信するとコンテキストをキャンセルする。
func Run(stdout, stderr io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := New(stdout, stderr)
	rootCmd := a.NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd.ExecuteContext(ctx)
}

// withDB は専用の接続を開いてfnを実行し、終了時に必ず接続を閉じる。
// 実行後はメトリクスをtextfileに書き出す。
func (a *App) withDB(ctx context.Context, cmd Command, fn func(db *sql.DB) error) (err error) {
	defer func() {
		if werr := metrics.WriteTextfile(a.cfg.MetricsTextfile, a.registry); werr != nil {
			slog.Warn("failed to write metrics", slog.String("error", werr.Error()))
		}
	}()

	start := time.Now()
	db, err := database.Connect(ctx, a.cfg.DatabaseURL())
	if err != nil {
		a.recorder.RecordOperation(string(cmd), err, time.Since(start))
		slog.Error("database connection failed",
			slog.String("command", string(cmd)),
			slog.String("database_url", config.MaskDatabaseURL(a.cfg.DatabaseURL())),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close database: %w", cerr))
		}
	}()

	slog.Info("database connection established",
		slog.String("command", string(cmd)),
		slog.String("database_url", config.MaskDatabaseURL(a.cfg.DatabaseURL())),
	)

	return fn(db)
}

func (a *App) runSetup(ctx context.Context) error {
	return a.withDB(ctx, CommandSetup, func(db *sql.DB) error {
		return schema.NewInitializer(db, a.cfg.DBTimeZone, slog.Default(), a.recorder).Setup(ctx)
	})
}

func (a *App) runLoad(ctx context.Context) error {
	users, err := loader.SampleUsers(a.cfg.Location())
	if err != nil {
		return err
	}
	return a.withDB(ctx, CommandLoad, func(db *sql.DB) error {
		_, err := loader.NewLoader(db, slog.Default(), a.recorder).Load(ctx, users)
		return err
	})
}

func (a *App) runReport(ctx context.Context) error {
	return a.withDB(ctx, CommandReport, func(db *sql.DB) error {
		return report.NewGenerator(db, slog.Default(), a.recorder).Generate(ctx, a.stdout)
	})
}

func (a *App) runFind(ctx context.Context, finder repository.Finder) error {
	return a.withDB(ctx, CommandFind, func(db *sql.DB) error {
		return report.NewGenerator(db, slog.Default(), a.recorder).Find(ctx, a.stdout, finder)
	})
}
