package schema

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hitoshi/siteuser/internal/metrics"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func expectSetup(mock sqlmock.Sqlmock, rolesExist, timeRangeExists bool) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS site_user`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM pg_type WHERE typname = $1`)).
		WithArgs("roles").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(rolesExist))
	if !rolesExist {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TYPE "roles" AS ENUM`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM pg_type WHERE typname = $1`)).
		WithArgs("time_range").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(timeRangeExists))
	if !timeRangeExists {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TYPE time_range AS`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	mock.ExpectExec(regexp.QuoteMeta(`SELECT set_config('timezone', $1, false)`)).
		WithArgs("Europe/Berlin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`ADD COLUMN IF NOT EXISTS uuid UUID`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func TestSetup_FirstRun_CreatesTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	initializer := NewInitializer(db, "Europe/Berlin", newTestLogger(&buf), metrics.NewCollector(reg))

	expectSetup(mock, false, false)

	if err := initializer.Setup(context.Background()); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
	if !strings.Contains(buf.String(), "schema setup completed") {
		t.Errorf("expected completion log, got %s", buf.String())
	}
}

// TestSetup_SecondRun_Succeeds は2回目の実行でも型作成をスキップし、
// 列追加もIF NOT EXISTSにより失敗しないことを検証する。
func TestSetup_SecondRun_Succeeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	var buf bytes.Buffer
	initializer := NewInitializer(db, "Europe/Berlin", newTestLogger(&buf), nil)

	expectSetup(mock, false, false)
	expectSetup(mock, true, true)

	if err := initializer.Setup(context.Background()); err != nil {
		t.Fatalf("first Setup returned error: %v", err)
	}
	if err := initializer.Setup(context.Background()); err != nil {
		t.Fatalf("second Setup returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetup_StepFailure_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	var buf bytes.Buffer
	initializer := NewInitializer(db, "Europe/Berlin", newTestLogger(&buf), nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS site_user`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)).
		WillReturnError(&pq.Error{Code: "42501", Message: "permission denied to create extension"})
	mock.ExpectRollback()

	err = initializer.Setup(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "install_uuid_extension") {
		t.Errorf("error should name the failing step, got %v", err)
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Errorf("expected wrapped *pq.Error, got %T", err)
	}
	if !strings.Contains(buf.String(), `"sqlstate":"42501"`) {
		t.Errorf("expected sqlstate in log, got %s", buf.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
