// Package loader はサンプルユーザーの投入処理を提供する。
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/siteuser/internal/database"
	"github.com/hitoshi/siteuser/internal/metrics"
	"github.com/hitoshi/siteuser/internal/model"
	"github.com/hitoshi/siteuser/internal/repository"
)

// Result は投入結果を表す。
type Result struct {
	Inserted []int64
	Skipped  []int64
}

// Loader はユーザーを主キー単位で冪等に投入する。
type Loader struct {
	db       database.TxBeginner
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewLoader は新しいLoaderを生成する。
func NewLoader(db database.TxBeginner, logger *slog.Logger, recorder metrics.Recorder) *Loader {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Loader{
		db:       db,
		logger:   logger,
		recorder: recorder,
	}
}

// Load はusersのうち未登録のIDだけを挿入する。
// 既存の行は変更しない。全件を1つのトランザクションで処理し、
// 最後にidシーケンスを最大IDに合わせる。
func (l *Loader) Load(ctx context.Context, users []*model.SiteUser) (Result, error) {
	start := time.Now()
	var result Result

	err := database.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		repo := repository.NewPostgresSiteUserRepo(tx)

		for _, user := range users {
			inserted, id, err := repo.InsertIfAbsent(ctx, user)
			if err != nil {
				l.logger.Error("failed to insert site user",
					append([]any{slog.Int64("id", user.ID)}, database.LogAttrs(err)...)...,
				)
				return err
			}

			if !inserted {
				result.Skipped = append(result.Skipped, user.ID)
				l.logger.Debug("site user already exists", slog.Int64("id", user.ID))
				continue
			}

			result.Inserted = append(result.Inserted, user.ID)
			l.logger.Info("site user inserted",
				slog.Int64("id", user.ID),
				slog.String("uuid", id.String()),
				slog.String("role", string(user.Role)),
			)
		}

		if len(result.Inserted) > 0 {
			if err := repo.SyncIDSequence(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	duration := time.Since(start)
	l.recorder.RecordOperation("load", err, duration)
	if database.IsUndefinedTable(err) {
		return Result{}, fmt.Errorf("site_user table does not exist, run setup first: %w", err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to load site users: %w", err)
	}

	l.recorder.RecordUsersLoaded(len(result.Inserted), len(result.Skipped))
	l.logger.Info("load completed",
		slog.Int("inserted", len(result.Inserted)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Duration("duration", duration),
	)
	return result, nil
}
