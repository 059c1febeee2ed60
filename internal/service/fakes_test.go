package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*repository.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*repository.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("user %s not found", u.ID)
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePrefs(_ context.Context, userID string, prefs repository.NotificationPrefs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.Prefs = prefs
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(_ context.Context, _ *repository.RefreshToken) error {
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(_ context.Context, _ string) (*repository.RefreshToken, error) {
	return nil, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, _ string) error {
	return nil
}

type staffKey struct{ farmID, userID string }

type fakeFarmRepo struct {
	mu       sync.Mutex
	farms    map[string]*repository.Farm
	staff    map[staffKey]*repository.StaffMember
	users    *fakeUserRepo
	invs     *fakeInvitationRepo
	acceptFn func() error // optional hook to fail the accept tx
}

func newFakeFarmRepo(users *fakeUserRepo, invs *fakeInvitationRepo) *fakeFarmRepo {
	return &fakeFarmRepo{
		farms: map[string]*repository.Farm{},
		staff: map[staffKey]*repository.StaffMember{},
		users: users,
		invs:  invs,
	}
}

func (r *fakeFarmRepo) Create(_ context.Context, f *repository.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	cp := *f
	r.farms[f.ID] = &cp
	return nil
}

func (r *fakeFarmRepo) FindByID(_ context.Context, id string) (*repository.Farm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.farms[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFarmRepo) Update(_ context.Context, f *repository.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.farms[f.ID] = &cp
	return nil
}

func (r *fakeFarmRepo) ListStaff(_ context.Context, farmID string) ([]*repository.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.StaffMember
	for k, m := range r.staff {
		if k.farmID == farmID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeFarmRepo) FindStaff(_ context.Context, farmID, userID string) (*repository.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.staff[staffKey{farmID, userID}]
	if !ok {
		return nil, nil
	}
	cp := *m
	if u, ok := r.users.users[userID]; ok {
		ucp := *u
		cp.User = &ucp
	}
	return &cp, nil
}

func (r *fakeFarmRepo) AcceptInvitation(ctx context.Context, invitationID, farmID, userID string, role types.StaffRole) error {
	if r.acceptFn != nil {
		if err := r.acceptFn(); err != nil {
			return err
		}
	}

	inv, _ := r.invs.FindByID(ctx, invitationID)
	if inv == nil || inv.Status != types.InvitationPending {
		return repository.ErrInvitationNotPending
	}
	if err := r.invs.MarkStatus(ctx, invitationID, types.InvitationAccepted, &userID); err != nil {
		return err
	}

	r.mu.Lock()
	r.staff[staffKey{farmID, userID}] = &repository.StaffMember{
		FarmID:   farmID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	r.mu.Unlock()

	roleStr := string(role)
	r.users.mu.Lock()
	if u, ok := r.users.users[userID]; ok {
		u.FarmID = &farmID
		u.IsFarmOwner = false
		u.FarmRole = &roleStr
	}
	r.users.mu.Unlock()
	return nil
}

func (r *fakeFarmRepo) UpdateStaffRole(_ context.Context, farmID, userID string, role types.StaffRole) error {
	r.mu.Lock()
	m, ok := r.staff[staffKey{farmID, userID}]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("staff not found")
	}
	m.Role = role
	r.mu.Unlock()

	roleStr := string(role)
	r.users.mu.Lock()
	if u, ok := r.users.users[userID]; ok {
		u.FarmRole = &roleStr
	}
	r.users.mu.Unlock()
	return nil
}

func (r *fakeFarmRepo) RemoveStaff(_ context.Context, farmID, userID, newFarmName string) (string, error) {
	r.mu.Lock()
	delete(r.staff, staffKey{farmID, userID})
	newFarm := &repository.Farm{ID: uuid.New().String(), OwnerID: userID, Name: newFarmName}
	r.farms[newFarm.ID] = newFarm
	r.mu.Unlock()

	r.users.mu.Lock()
	if u, ok := r.users.users[userID]; ok {
		u.FarmID = &newFarm.ID
		u.IsFarmOwner = true
		u.FarmRole = nil
	}
	r.users.mu.Unlock()
	return newFarm.ID, nil
}

type fakeInvitationRepo struct {
	mu   sync.Mutex
	invs map[string]*repository.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invs: map[string]*repository.Invitation{}}
}

func (r *fakeInvitationRepo) Create(_ context.Context, inv *repository.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Token == "" {
		inv.Token = uuid.New().String()
	}
	inv.CreatedAt = time.Now()
	cp := *inv
	r.invs[inv.ID] = &cp
	return nil
}

func (r *fakeInvitationRepo) FindByID(_ context.Context, id string) (*repository.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invs[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvitationRepo) FindByToken(_ context.Context, token string) (*repository.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invs {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvitationRepo) FindPendingByEmail(_ context.Context, email string) ([]*repository.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Invitation
	for _, inv := range r.invs {
		if inv.Status == types.InvitationPending && strings.EqualFold(inv.InvitedEmail, email) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) FindByFarm(_ context.Context, farmID string) ([]*repository.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Invitation
	for _, inv := range r.invs {
		if inv.FarmID == farmID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) ExistsPendingForEmail(_ context.Context, farmID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invs {
		if inv.FarmID == farmID && inv.Status == types.InvitationPending && strings.EqualFold(inv.InvitedEmail, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvitationRepo) MarkStatus(_ context.Context, id string, status types.InvitationStatus, resolvedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invs[id]
	if !ok {
		return fmt.Errorf("invitation %s not found", id)
	}
	inv.Status = status
	inv.ResolvedBy = resolvedBy
	now := time.Now()
	inv.ResolvedAt = &now
	return nil
}

func (r *fakeInvitationRepo) ExpireOverdue(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	now := time.Now()
	for _, inv := range r.invs {
		if inv.Status == types.InvitationPending && inv.ExpiresAt != nil && now.After(*inv.ExpiresAt) {
			inv.Status = types.InvitationExpired
			n++
		}
	}
	return n, nil
}

// ============================================
// Test world builders
// ============================================

type world struct {
	users *fakeUserRepo
	farms *fakeFarmRepo
	invs  *fakeInvitationRepo
}

func newWorld() *world {
	users := newFakeUserRepo()
	invs := newFakeInvitationRepo()
	farms := newFakeFarmRepo(users, invs)
	return &world{users: users, farms: farms, invs: invs}
}

// addOwner creates a user owning a fresh farm.
func (w *world) addOwner(name, email string) (*repository.User, *repository.Farm) {
	ctx := context.Background()
	u := &repository.User{Name: name, Email: email}
	w.users.Create(ctx, u)

	f := &repository.Farm{OwnerID: u.ID, Name: name + "'s Farm"}
	w.farms.Create(ctx, f)

	u.FarmID = &f.ID
	u.IsFarmOwner = true
	w.users.Update(ctx, u)
	return u, f
}

// addUser creates a user with no farm membership.
func (w *world) addUser(name, email string) *repository.User {
	u := &repository.User{Name: name, Email: email}
	w.users.Create(context.Background(), u)
	return u
}

// addStaff joins a user to a farm with a role.
func (w *world) addStaff(farm *repository.Farm, u *repository.User, role types.StaffRole) {
	ctx := context.Background()
	w.farms.mu.Lock()
	w.farms.staff[staffKey{farm.ID, u.ID}] = &repository.StaffMember{
		FarmID: farm.ID, UserID: u.ID, Role: role, JoinedAt: time.Now(),
	}
	w.farms.mu.Unlock()

	roleStr := string(role)
	u.FarmID = &farm.ID
	u.IsFarmOwner = false
	u.FarmRole = &roleStr
	w.users.Update(ctx, u)
}
