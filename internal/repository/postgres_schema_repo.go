package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/siteuser/internal/model"
	"github.com/lib/pq"
)

const (
	roleEnumName      = "roles"
	timeRangeTypeName = "time_range"
)

// PostgresSchemaRepo はPostgreSQLを使用したスキーマリポジトリ。
type PostgresSchemaRepo struct {
	db Querier
}

// NewPostgresSchemaRepo はPostgresSchemaRepoを生成する。
func NewPostgresSchemaRepo(db Querier) *PostgresSchemaRepo {
	return &PostgresSchemaRepo{db: db}
}

// CreateTable はsite_userテーブルが存在しなければ作成する。
func (r *PostgresSchemaRepo) CreateTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS site_user (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100)
		)`,
	)
	if err != nil {
		return fmt.Errorf("failed to create site_user table: %w", err)
	}
	return nil
}

// InstallUUIDExtension はuuid_generate_v4()を提供するuuid-ossp拡張をインストールする。
func (r *PostgresSchemaRepo) InstallUUIDExtension(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("failed to install uuid-ossp extension: %w", err)
	}
	return nil
}

// TypeExists は指定名の型がpg_typeに存在するかを返す。
func (r *PostgresSchemaRepo) TypeExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check type %s: %w", name, err)
	}
	return exists, nil
}

// CreateRoleEnum はmodel.Roles()の値でroles列挙型を作成する。
// PostgreSQLのCREATE TYPEはIF NOT EXISTSをサポートしないため、呼び出し側でTypeExistsを確認すること。
func (r *PostgresSchemaRepo) CreateRoleEnum(ctx context.Context) error {
	labels := make([]string, 0, len(model.Roles()))
	for _, role := range model.Roles() {
		labels = append(labels, pq.QuoteLiteral(string(role)))
	}

	query := fmt.Sprintf(`CREATE TYPE %s AS ENUM (%s)`,
		pq.QuoteIdentifier(roleEnumName), strings.Join(labels, ", "))
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create roles enum: %w", err)
	}
	return nil
}

// CreateTimeRangeType はtime_range複合型を作成する。
func (r *PostgresSchemaRepo) CreateTimeRangeType(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`CREATE TYPE time_range AS (
			start_time TIME,
			end_time TIME
		)`,
	)
	if err != nil {
		return fmt.Errorf("failed to create time_range type: %w", err)
	}
	return nil
}

// SetTimeZone はセッションのタイムゾーンを設定する。
// SET文はバインドパラメータを受け付けないため、set_configを使う。
func (r *PostgresSchemaRepo) SetTimeZone(ctx context.Context, tz string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT set_config('timezone', $1, false)`, tz); err != nil {
		return fmt.Errorf("failed to set time zone %s: %w", tz, err)
	}
	return nil
}

// AddProfileColumns はプロフィール用の列を追加する。
// 2回目以降の実行でも失敗しないよう、各列にIF NOT EXISTSを付与する。
func (r *PostgresSchemaRepo) AddProfileColumns(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`ALTER TABLE site_user
			ADD COLUMN IF NOT EXISTS uuid UUID DEFAULT uuid_generate_v4(),
			ADD COLUMN IF NOT EXISTS avatar BYTEA,
			ADD COLUMN IF NOT EXISTS role ROLES,
			ADD COLUMN IF NOT EXISTS birthdate DATE,
			ADD COLUMN IF NOT EXISTS siblings TEXT[],
			ADD COLUMN IF NOT EXISTS availability TIME_RANGE[],
			ADD COLUMN IF NOT EXISTS site_setting JSON,
			ADD COLUMN IF NOT EXISTS created_on TIMESTAMPTZ`,
	)
	if err != nil {
		return fmt.Errorf("failed to add profile columns: %w", err)
	}
	return nil
}

// ColumnExists はinformation_schema.columnsを参照して列の有無を返す。
func (r *PostgresSchemaRepo) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		)`,
		table, column,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check column %s.%s: %w", table, column, err)
	}
	return exists, nil
}

// AddActiveForColumn はactive_for列を追加する。
func (r *PostgresSchemaRepo) AddActiveForColumn(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE site_user ADD COLUMN active_for INTERVAL`); err != nil {
		return fmt.Errorf("failed to add active_for column: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SchemaRepository = (*PostgresSchemaRepo)(nil)
