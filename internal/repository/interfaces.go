// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/hitoshi/siteuser/internal/model"
)

// Querier はSQL実行を抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SchemaRepository はsite_userテーブルのスキーマ操作インターフェース。
type SchemaRepository interface {
	// CreateTable はsite_userテーブルが存在しなければ作成する。
	CreateTable(ctx context.Context) error

	// InstallUUIDExtension はuuid-ossp拡張をインストールする。
	InstallUUIDExtension(ctx context.Context) error

	// TypeExists は指定名の型がpg_typeに存在するかを返す。
	TypeExists(ctx context.Context, name string) (bool, error)

	// CreateRoleEnum はroles列挙型を作成する。
	CreateRoleEnum(ctx context.Context) error

	// CreateTimeRangeType はtime_range複合型を作成する。
	CreateTimeRangeType(ctx context.Context) error

	// SetTimeZone はセッションのタイムゾーンを設定する。
	SetTimeZone(ctx context.Context, tz string) error

	// AddProfileColumns はプロフィール用の列を追加する。既存の列はスキップされる。
	AddProfileColumns(ctx context.Context) error

	// ColumnExists はinformation_schema.columnsを参照して列の有無を返す。
	ColumnExists(ctx context.Context, table, column string) (bool, error)

	// AddActiveForColumn はactive_for列を追加する。
	// 呼び出し側でColumnExistsによる存在確認を行うこと。
	AddActiveForColumn(ctx context.Context) error
}

// SiteUserRepository はサイトユーザーデータの永続化インターフェース。
type SiteUserRepository interface {
	// InsertIfAbsent は同じIDの行が存在しない場合のみユーザーを挿入する。
	// 存在確認と挿入は1文で行われる。挿入した場合は採番されたUUIDを返す。
	InsertIfAbsent(ctx context.Context, user *model.SiteUser) (bool, uuid.UUID, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.SiteUser, error)

	// Count はユーザー数を返す。
	Count(ctx context.Context) (int, error)

	// SyncIDSequence はidのシーケンスを現在の最大IDに合わせる。
	SyncIDSequence(ctx context.Context) error

	// ListActiveFor は名前と作成からの経過時間を返す。
	ListActiveFor(ctx context.Context) ([]ActiveFor, error)

	// ListNames はfinderの条件に一致するユーザー名を返す。
	ListNames(ctx context.Context, finder Finder) ([]string, error)
}

// ActiveFor はレポートの1行を表す。NULLの値はValid=falseになる。
type ActiveFor struct {
	Name      sql.NullString
	ActiveFor sql.NullString
}
