package database

import (
	"errors"
	"log/slog"

	"github.com/lib/pq"
)

// SQLState はlib/pqのエラーからSQLSTATEコードを取り出す。
// PostgreSQL由来のエラーでない場合は空文字を返す。
func SQLState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUndefinedTable はエラーがテーブル未作成（42P01）によるものかを判定する。
func IsUndefinedTable(err error) bool {
	return SQLState(err) == "42P01"
}

// LogAttrs はエラーをログ出力用の属性に変換する。
// PostgreSQL由来のエラーの場合はSQLSTATEとエラー名を付与する。
func LogAttrs(err error) []any {
	attrs := []any{slog.String("error", err.Error())}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		attrs = append(attrs,
			slog.String("sqlstate", string(pqErr.Code)),
			slog.String("sqlstate_name", pqErr.Code.Name()),
		)
	}

	return attrs
}
