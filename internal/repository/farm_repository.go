package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

type pgFarmRepository struct {
	db Pool
}

func NewFarmRepository(db Pool) FarmRepository {
	return &pgFarmRepository{db: db}
}

func (r *pgFarmRepository) Create(ctx context.Context, farm *Farm) error {
	query := `
		INSERT INTO farms (owner_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, farm.OwnerID, farm.Name).
		Scan(&farm.ID, &farm.CreatedAt, &farm.UpdatedAt)
}

func (r *pgFarmRepository) FindByID(ctx context.Context, id string) (*Farm, error) {
	query := `SELECT id, owner_id, name, created_at, updated_at FROM farms WHERE id = $1`
	farm := &Farm{}
	err := r.db.QueryRow(ctx, query, id).
		Scan(&farm.ID, &farm.OwnerID, &farm.Name, &farm.CreatedAt, &farm.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return farm, nil
}

func (r *pgFarmRepository) Update(ctx context.Context, farm *Farm) error {
	query := `UPDATE farms SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, farm.Name, farm.ID)
	return err
}

func (r *pgFarmRepository) ListStaff(ctx context.Context, farmID string) ([]*StaffMember, error) {
	query := `
		SELECT s.farm_id, s.user_id, s.role, s.joined_at, u.name, u.email
		FROM farm_staff s
		JOIN users u ON u.id = s.user_id
		WHERE s.farm_id = $1
		ORDER BY s.joined_at
	`
	rows, err := r.db.Query(ctx, query, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []*StaffMember
	for rows.Next() {
		m := &StaffMember{User: &User{}}
		if err := rows.Scan(&m.FarmID, &m.UserID, &m.Role, &m.JoinedAt, &m.User.Name, &m.User.Email); err != nil {
			return nil, err
		}
		m.User.ID = m.UserID
		staff = append(staff, m)
	}
	return staff, rows.Err()
}

func (r *pgFarmRepository) FindStaff(ctx context.Context, farmID, userID string) (*StaffMember, error) {
	query := `SELECT farm_id, user_id, role, joined_at FROM farm_staff WHERE farm_id = $1 AND user_id = $2`
	m := &StaffMember{}
	err := r.db.QueryRow(ctx, query, farmID, userID).Scan(&m.FarmID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AcceptInvitation applies the accept mutation set in one transaction: the
// invitation row is locked and re-checked so a concurrent accept of the same
// invitation fails with ErrInvitationNotPending instead of double-applying.
func (r *pgFarmRepository) AcceptInvitation(ctx context.Context, invitationID, farmID, userID string, role types.StaffRole) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status types.InvitationStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM invitations WHERE id = $1 FOR UPDATE`, invitationID,
	).Scan(&status)
	if err != nil {
		return err
	}
	if status != types.InvitationPending {
		return ErrInvitationNotPending
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invitations
		SET status = 'accepted', invitee_user_id = $1, resolved_by = $1, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`, userID, invitationID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO farm_staff (farm_id, user_id, role) VALUES ($1, $2, $3)
	`, farmID, userID, role); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET farm_id = $1, is_farm_owner = FALSE, farm_role = $2, updated_at = NOW()
		WHERE id = $3
	`, farmID, role, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateStaffRole changes the staff entry and mirrors the role onto the user
// profile inside one transaction.
func (r *pgFarmRepository) UpdateStaffRole(ctx context.Context, farmID, userID string, role types.StaffRole) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE farm_staff SET role = $1 WHERE farm_id = $2 AND user_id = $3
	`, role, farmID, userID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET farm_role = $1, updated_at = NOW() WHERE id = $2
	`, role, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RemoveStaff removes the member and spins off a fresh farm they own. The
// removal and re-provisioning commit together.
func (r *pgFarmRepository) RemoveStaff(ctx context.Context, farmID, userID, newFarmName string) (string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM farm_staff WHERE farm_id = $1 AND user_id = $2
	`, farmID, userID); err != nil {
		return "", err
	}

	var newFarmID string
	err = tx.QueryRow(ctx, `
		INSERT INTO farms (owner_id, name) VALUES ($1, $2) RETURNING id
	`, userID, newFarmName).Scan(&newFarmID)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET farm_id = $1, is_farm_owner = TRUE, farm_role = NULL, updated_at = NOW()
		WHERE id = $2
	`, newFarmID, userID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return newFarmID, nil
}
