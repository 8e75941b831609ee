package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Settings はユーザーごとのサイト設定（自由形式のJSONドキュメント）。
type Settings json.RawMessage

// Value はJSON列にバインドするためテキストとして返す。
// lib/pqは[]byteをbyteaとして送るため、文字列に変換する。
func (s Settings) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return string(s), nil
}

// Scan はJSON列の値を読み取る。
func (s *Settings) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = append((*s)[:0], v...)
	case string:
		*s = Settings(v)
	default:
		return fmt.Errorf("cannot scan %T into Settings", src)
	}
	return nil
}

// Bool はトップレベルのキーを真偽値として読み取る。
// キーが存在しない、または真偽値でない場合はfalseを返す。
func (s Settings) Bool(key string) bool {
	var doc map[string]any
	if err := json.Unmarshal(s, &doc); err != nil {
		return false
	}
	b, ok := doc[key].(bool)
	return ok && b
}
