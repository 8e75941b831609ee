package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/siteuser/internal/model"
	"github.com/lib/pq"
)

// PostgresSiteUserRepo はPostgreSQLを使用したサイトユーザーリポジトリ。
type PostgresSiteUserRepo struct {
	db Querier
}

// NewPostgresSiteUserRepo はPostgresSiteUserRepoを生成する。
func NewPostgresSiteUserRepo(db Querier) *PostgresSiteUserRepo {
	return &PostgresSiteUserRepo{db: db}
}

// InsertIfAbsent は同じIDの行が存在しない場合のみユーザーを挿入する。
// ON CONFLICT DO NOTHINGにより存在確認と挿入を1文で行うため、
// 別プロセスとの競合でも重複や一意制約エラーにならない。
func (r *PostgresSiteUserRepo) InsertIfAbsent(ctx context.Context, user *model.SiteUser) (bool, uuid.UUID, error) {
	var birthdate any
	if !user.Birthdate.IsZero() {
		birthdate = user.Birthdate.Format("2006-01-02")
	}
	var createdOn any
	if !user.CreatedOn.IsZero() {
		createdOn = user.CreatedOn
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO site_user (
			id, name, role, birthdate, siblings, availability, site_setting, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6::time_range[], $7, $8)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING uuid`,
		user.ID,
		user.Name,
		string(user.Role),
		birthdate,
		pq.Array(user.Siblings),
		user.Availability,
		user.Settings,
		createdOn,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return false, uuid.Nil, nil
	}
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("failed to insert site user %d: %w", user.ID, err)
	}

	return true, id, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresSiteUserRepo) FindByID(ctx context.Context, id int64) (*model.SiteUser, error) {
	var (
		user      = &model.SiteUser{}
		userUUID  uuid.NullUUID
		name      sql.NullString
		role      sql.NullString
		birthdate sql.NullTime
		createdOn sql.NullTime
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, uuid, name, role, birthdate, siblings, availability, site_setting, created_on
		 FROM site_user WHERE id = $1`,
		id,
	).Scan(
		&user.ID, &userUUID, &name, &role, &birthdate,
		pq.Array(&user.Siblings), &user.Availability, &user.Settings, &createdOn,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find site user by ID: %w", err)
	}

	user.UUID = userUUID.UUID
	user.Name = name.String
	user.Role = model.Role(role.String)
	user.Birthdate = birthdate.Time
	user.CreatedOn = createdOn.Time

	return user, nil
}

// Count はユーザー数を返す。
func (r *PostgresSiteUserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM site_user`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count site users: %w", err)
	}
	return count, nil
}

// SyncIDSequence はidのシーケンスを現在の最大IDに合わせる。
// IDを明示して挿入した後にDEFAULT採番と衝突しないようにする。
func (r *PostgresSiteUserRepo) SyncIDSequence(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`SELECT setval(
			pg_get_serial_sequence('site_user', 'id'),
			COALESCE(MAX(id), 1),
			MAX(id) IS NOT NULL
		) FROM site_user`,
	)
	if err != nil {
		return fmt.Errorf("failed to sync site_user id sequence: %w", err)
	}
	return nil
}

// ListActiveFor は名前と作成からの経過時間をID順で返す。
func (r *PostgresSiteUserRepo) ListActiveFor(ctx context.Context) ([]ActiveFor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, now() - created_on AS active_for FROM site_user ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active_for: %w", err)
	}
	defer rows.Close()

	var result []ActiveFor
	for rows.Next() {
		var row ActiveFor
		if err := rows.Scan(&row.Name, &row.ActiveFor); err != nil {
			return nil, fmt.Errorf("failed to scan active_for row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active_for rows: %w", err)
	}

	return result, nil
}

// ListNames はfinderの条件に一致するユーザー名をID順で返す。
func (r *PostgresSiteUserRepo) ListNames(ctx context.Context, finder Finder) ([]string, error) {
	clause, err := finder.clause()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM site_user WHERE `+clause+` ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query names (%s): %w", finder, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate names: %w", err)
	}

	return names, nil
}

// compile-time interface check
var _ SiteUserRepository = (*PostgresSiteUserRepo)(nil)
