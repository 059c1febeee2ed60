package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

type pgInvitationRepository struct {
	db Pool
}

func NewInvitationRepository(db Pool) InvitationRepository {
	return &pgInvitationRepository{db: db}
}

const invitationColumns = `id, token, farm_id, farm_name, inviter_id, invited_email,
	invitee_user_id, role, status, expires_at, resolved_at, resolved_by, created_at, updated_at`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(
		&inv.ID, &inv.Token, &inv.FarmID, &inv.FarmName, &inv.InviterID, &inv.InvitedEmail,
		&inv.InviteeUserID, &inv.Role, &inv.Status, &inv.ExpiresAt, &inv.ResolvedAt, &inv.ResolvedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvitationRepository) Create(ctx context.Context, inv *Invitation) error {
	inv.Token = uuid.New().String()
	query := `
		INSERT INTO invitations (token, farm_id, farm_name, inviter_id, invited_email,
			invitee_user_id, role, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		inv.Token, inv.FarmID, inv.FarmName, inv.InviterID, inv.InvitedEmail,
		inv.InviteeUserID, inv.Role, inv.Status, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func (r *pgInvitationRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.db.QueryRow(ctx, query, id))
}

func (r *pgInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(r.db.QueryRow(ctx, query, token))
}

func (r *pgInvitationRepository) FindPendingByEmail(ctx context.Context, email string) ([]*Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE LOWER(invited_email) = LOWER($1) AND status = 'pending'
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, email)
}

func (r *pgInvitationRepository) FindByFarm(ctx context.Context, farmID string) ([]*Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE farm_id = $1
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, farmID)
}

func (r *pgInvitationRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Invitation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.Token, &inv.FarmID, &inv.FarmName, &inv.InviterID, &inv.InvitedEmail,
			&inv.InviteeUserID, &inv.Role, &inv.Status, &inv.ExpiresAt, &inv.ResolvedAt, &inv.ResolvedBy,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) ExistsPendingForEmail(ctx context.Context, farmID, email string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE farm_id = $1 AND LOWER(invited_email) = LOWER($2) AND status = 'pending'
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, farmID, email).Scan(&exists)
	return exists, err
}

func (r *pgInvitationRepository) MarkStatus(ctx context.Context, id string, status types.InvitationStatus, resolvedBy *string) error {
	query := `
		UPDATE invitations
		SET status = $1, resolved_by = $2, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, status, resolvedBy, id)
	return err
}

// ExpireOverdue flips pending invitations whose expiry has passed. Invoked by
// the hourly cron sweep.
func (r *pgInvitationRepository) ExpireOverdue(ctx context.Context) (int, error) {
	query := `
		UPDATE invitations
		SET status = 'expired', resolved_at = NOW(), updated_at = NOW()
		WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at < NOW()
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
