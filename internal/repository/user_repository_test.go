package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserRepo(t *testing.T) (pgxmock.PgxPoolIface, UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return mock, NewUserRepository(mock)
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "password", "farm_id", "is_farm_owner", "farm_role",
		"notify_invitation_email", "notify_staff_email", "notify_task_email", "notify_ai_email",
		"created_at", "updated_at",
	})
}

func TestUserRepoFindByID(t *testing.T) {
	mock, repo := setupUserRepo(t)

	farmID := "farm-1"
	role := "editor"
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(userRows().AddRow(
			"user-1", "Janet", "janet@example.com", "hash", &farmID, false, &role,
			true, true, true, false, now, now,
		))

	u, err := repo.FindByID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Janet", u.Name)
	require.NotNil(t, u.FarmID)
	assert.Equal(t, "farm-1", *u.FarmID)
	assert.True(t, u.Prefs.InvitationEmail)
	assert.False(t, u.Prefs.AIEmail)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoFindByID_NoRowsIsNilNil(t *testing.T) {
	mock, repo := setupUserRepo(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	u, err := repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, u)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoFindByEmail_CaseInsensitive(t *testing.T) {
	mock, repo := setupUserRepo(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Janet@Example.com").
		WillReturnRows(userRows().AddRow(
			"user-1", "Janet", "janet@example.com", "hash", nil, true, nil,
			true, true, true, false, now, now,
		))

	u, err := repo.FindByEmail(context.Background(), "Janet@Example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsFarmOwner)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreate(t *testing.T) {
	mock, repo := setupUserRepo(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Janet", "janet@example.com", "hash", (*string)(nil), false, (*string)(nil),
			true, true, true, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("user-1", now, now))

	u := &User{
		Name:     "Janet",
		Email:    "janet@example.com",
		Password: "hash",
		Prefs:    NotificationPrefs{InvitationEmail: true, StaffEmail: true, TaskEmail: true},
	}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "user-1", u.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdatePrefs(t *testing.T) {
	mock, repo := setupUserRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(true, false, true, true, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePrefs(context.Background(), "user-1", NotificationPrefs{
		InvitationEmail: true, StaffEmail: false, TaskEmail: true, AIEmail: true,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoRefreshTokens(t *testing.T) {
	mock, repo := setupUserRepo(t)

	now := time.Now()
	exp := now.Add(24 * time.Hour)
	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WithArgs("tok", "user-1", exp).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("rt-1", now))

	rt := &RefreshToken{Token: "tok", UserID: "user-1", ExpiresAt: exp}
	require.NoError(t, repo.SaveRefreshToken(context.Background(), rt))
	assert.Equal(t, "rt-1", rt.ID)

	mock.ExpectQuery(`SELECT .* FROM refresh_tokens WHERE token = \$1`).
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows([]string{"id", "token", "user_id", "expires_at", "created_at"}).
			AddRow("rt-1", "tok", "user-1", exp, now))

	found, err := repo.FindRefreshToken(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "user-1", found.UserID)

	mock.ExpectExec(`DELETE FROM refresh_tokens`).
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	assert.NoError(t, repo.DeleteRefreshToken(context.Background(), "tok"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
