// Package report はsite_userの稼働期間レポートと検索結果の出力を提供する。
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/siteuser/internal/database"
	"github.com/hitoshi/siteuser/internal/metrics"
	"github.com/hitoshi/siteuser/internal/model"
	"github.com/hitoshi/siteuser/internal/repository"
)

const (
	rowFormat    = "%-20s | %-20s\n"
	ruleWidth    = 45
	activeForCol = "active_for"
)

// Generator はレポートを生成する。
type Generator struct {
	db       database.TxBeginner
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewGenerator は新しいGeneratorを生成する。
func NewGenerator(db database.TxBeginner, logger *slog.Logger, recorder metrics.Recorder) *Generator {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Generator{
		db:       db,
		logger:   logger,
		recorder: recorder,
	}
}

// Generate はactive_for列を必要に応じて追加し、名前と経過時間の表をwに書き出す。
// 表はトランザクションのコミット後に書き出す。
func (g *Generator) Generate(ctx context.Context, w io.Writer) error {
	start := time.Now()
	var rows []repository.ActiveFor

	err := database.WithTx(ctx, g.db, func(tx *sql.Tx) error {
		schemaRepo := repository.NewPostgresSchemaRepo(tx)
		userRepo := repository.NewPostgresSiteUserRepo(tx)

		exists, err := schemaRepo.ColumnExists(ctx, model.TableName, activeForCol)
		if err != nil {
			return err
		}
		if !exists {
			if err := schemaRepo.AddActiveForColumn(ctx); err != nil {
				return err
			}
			g.recorder.RecordSchemaObjectCreated(activeForCol)
			g.logger.Info("column added", slog.String("column", activeForCol))
		}

		rows, err = userRepo.ListActiveFor(ctx)
		return err
	})

	g.recorder.RecordOperation("report", err, time.Since(start))
	if err != nil {
		g.logger.Error("report failed", database.LogAttrs(err)...)
		if database.IsUndefinedTable(err) {
			return fmt.Errorf("site_user table does not exist, run setup first: %w", err)
		}
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if err := WriteTable(w, rows); err != nil {
		return err
	}
	g.logger.Info("report generated", slog.Int("rows", len(rows)))
	return nil
}

// Find はfinderに一致するユーザー名を1行ずつwに書き出す。
func (g *Generator) Find(ctx context.Context, w io.Writer, finder repository.Finder) error {
	start := time.Now()
	var names []string

	err := database.WithTx(ctx, g.db, func(tx *sql.Tx) error {
		var err error
		names, err = repository.NewPostgresSiteUserRepo(tx).ListNames(ctx, finder)
		return err
	})

	g.recorder.RecordOperation("find", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to find site users: %w", err)
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return fmt.Errorf("failed to write name: %w", err)
		}
	}
	g.logger.Info("find completed",
		slog.String("finder", string(finder)),
		slog.Int("matches", len(names)),
	)
	return nil
}

// WriteTable はレポートの表をwに書き出す。NULLは空文字として出力する。
func WriteTable(w io.Writer, rows []repository.ActiveFor) error {
	var b strings.Builder
	fmt.Fprintf(&b, rowFormat, "Name", "Active_for")
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteByte('\n')
	for _, row := range rows {
		fmt.Fprintf(&b, rowFormat, row.Name.String, row.ActiveFor.String)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
