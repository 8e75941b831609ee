// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// TableName はサイトユーザーを格納するテーブル名。
const TableName = "site_user"

// SiteUser はサイトの利用ユーザーを表す。
// IDは主キー、UUIDはDB側でuuid_generate_v4()により採番される。
type SiteUser struct {
	ID           int64
	UUID         uuid.UUID
	Name         string
	Role         Role
	Birthdate    time.Time
	Siblings     []string
	Availability TimeRanges
	Settings     Settings
	CreatedOn    time.Time
}

// Role はユーザーの権限区分を表す。DB上はroles列挙型に対応する。
type Role string

const (
	RoleAnonymous Role = "Anonymous"
	RoleGuest     Role = "Guest"
	RoleUser      Role = "User"
	RoleModerator Role = "Moderator"
	RoleAdmin     Role = "Admin"
)

// Roles はroles列挙型の値を定義順で返す。
func Roles() []Role {
	return []Role{RoleAnonymous, RoleGuest, RoleUser, RoleModerator, RoleAdmin}
}

const (
	createdOnLayout = "01/02/06 03:04 PM"
	birthdateLayout = "2006-01-02"
)

// ParseCreatedOn は "09/23/15 08:56 AM" 形式の作成日時を指定ロケーションで解釈する。
func ParseCreatedOn(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(createdOnLayout, s, loc)
}

// ParseBirthdate は "1995-08-29" 形式の生年月日を解釈する。
func ParseBirthdate(s string) (time.Time, error) {
	return time.Parse(birthdateLayout, s)
}
