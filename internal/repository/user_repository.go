package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type pgUserRepository struct {
	db Pool
}

func NewUserRepository(db Pool) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, password, farm_id, is_farm_owner, farm_role,
	notify_invitation_email, notify_staff_email, notify_task_email, notify_ai_email,
	created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.FarmID, &u.IsFarmOwner, &u.FarmRole,
		&u.Prefs.InvitationEmail, &u.Prefs.StaffEmail, &u.Prefs.TaskEmail, &u.Prefs.AIEmail,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, password, farm_id, is_farm_owner, farm_role,
			notify_invitation_email, notify_staff_email, notify_task_email, notify_ai_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.Password, user.FarmID, user.IsFarmOwner, user.FarmRole,
		user.Prefs.InvitationEmail, user.Prefs.StaffEmail, user.Prefs.TaskEmail, user.Prefs.AIEmail,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *pgUserRepository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, farm_id = $3, is_farm_owner = $4, farm_role = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query,
		user.Name, user.Email, user.FarmID, user.IsFarmOwner, user.FarmRole, user.ID,
	)
	return err
}

func (r *pgUserRepository) UpdatePrefs(ctx context.Context, userID string, prefs NotificationPrefs) error {
	query := `
		UPDATE users
		SET notify_invitation_email = $1, notify_staff_email = $2,
			notify_task_email = $3, notify_ai_email = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query,
		prefs.InvitationEmail, prefs.StaffEmail, prefs.TaskEmail, prefs.AIEmail, userID,
	)
	return err
}

func (r *pgUserRepository) SaveRefreshToken(ctx context.Context, rt *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, rt.Token, rt.UserID, rt.ExpiresAt).Scan(&rt.ID, &rt.CreatedAt)
}

func (r *pgUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `SELECT id, token, user_id, expires_at, created_at FROM refresh_tokens WHERE token = $1`
	rt := &RefreshToken{}
	err := r.db.QueryRow(ctx, query, token).Scan(&rt.ID, &rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *pgUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}
