// Package schema はsite_userテーブルのスキーマ初期化を提供する。
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/siteuser/internal/database"
	"github.com/hitoshi/siteuser/internal/metrics"
	"github.com/hitoshi/siteuser/internal/repository"
)

// Initializer はsite_userテーブルとその依存オブジェクトを冪等に作成する。
type Initializer struct {
	db       database.TxBeginner
	timeZone string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewInitializer は新しいInitializerを生成する。
// timeZoneはセッションに設定するタイムゾーン（例: "Europe/Berlin"）。
func NewInitializer(db database.TxBeginner, timeZone string, logger *slog.Logger, recorder metrics.Recorder) *Initializer {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Initializer{
		db:       db,
		timeZone: timeZone,
		logger:   logger,
		recorder: recorder,
	}
}

type step struct {
	name string
	run  func(ctx context.Context, repo repository.SchemaRepository) error
}

// Setup はテーブル作成、拡張のインストール、型の作成、タイムゾーン設定、列の追加を
// 1つのトランザクションで順に実行する。
// いずれかの手順が失敗した場合はロールバックし、手順名付きのエラーを返す。
// 何度実行しても同じ結果になる。
func (i *Initializer) Setup(ctx context.Context) error {
	start := time.Now()

	steps := []step{
		{"create_table", func(ctx context.Context, repo repository.SchemaRepository) error {
			return repo.CreateTable(ctx)
		}},
		{"install_uuid_extension", func(ctx context.Context, repo repository.SchemaRepository) error {
			return repo.InstallUUIDExtension(ctx)
		}},
		{"create_roles_enum", func(ctx context.Context, repo repository.SchemaRepository) error {
			return i.ensureType(ctx, "roles", repo.TypeExists, repo.CreateRoleEnum)
		}},
		{"create_time_range_type", func(ctx context.Context, repo repository.SchemaRepository) error {
			return i.ensureType(ctx, "time_range", repo.TypeExists, repo.CreateTimeRangeType)
		}},
		{"set_time_zone", func(ctx context.Context, repo repository.SchemaRepository) error {
			return repo.SetTimeZone(ctx, i.timeZone)
		}},
		{"add_profile_columns", func(ctx context.Context, repo repository.SchemaRepository) error {
			return repo.AddProfileColumns(ctx)
		}},
	}

	err := database.WithTx(ctx, i.db, func(tx *sql.Tx) error {
		repo := repository.NewPostgresSchemaRepo(tx)
		for _, s := range steps {
			if err := s.run(ctx, repo); err != nil {
				i.logger.Error("schema step failed",
					append([]any{slog.String("step", s.name)}, database.LogAttrs(err)...)...,
				)
				return fmt.Errorf("schema setup step %s: %w", s.name, err)
			}
			i.logger.Debug("schema step completed", slog.String("step", s.name))
		}
		return nil
	})

	duration := time.Since(start)
	i.recorder.RecordOperation("setup", err, duration)
	if err != nil {
		return err
	}

	i.logger.Info("schema setup completed",
		slog.String("table", "site_user"),
		slog.String("time_zone", i.timeZone),
		slog.Duration("duration", duration),
	)
	return nil
}

// ensureType は型が存在しない場合のみcreateを呼び出す。
func (i *Initializer) ensureType(
	ctx context.Context,
	name string,
	exists func(context.Context, string) (bool, error),
	create func(context.Context) error,
) error {
	ok, err := exists(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		i.logger.Debug("type already exists", slog.String("type", name))
		return nil
	}
	if err := create(ctx); err != nil {
		return err
	}
	i.recorder.RecordSchemaObjectCreated(name)
	i.logger.Info("type created", slog.String("type", name))
	return nil
}
