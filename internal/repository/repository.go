package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// Pool is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrInvitationNotPending is returned by the accept transaction when the
// locked invitation row is no longer pending.
var ErrInvitationNotPending = errors.New("invitation is not pending")

// ============================================
// Entities
// ============================================

type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	FarmID      *string    `json:"farmId"`
	IsFarmOwner bool       `json:"isFarmOwner"`
	FarmRole    *string    `json:"farmRole,omitempty"`
	Prefs       NotificationPrefs `json:"notificationPreferences"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NotificationPrefs gates which notification types also produce email.
type NotificationPrefs struct {
	InvitationEmail bool `json:"invitationEmail"`
	StaffEmail      bool `json:"staffEmail"`
	TaskEmail       bool `json:"taskEmail"`
	AIEmail         bool `json:"aiEmail"`
}

// EmailEnabledFor reports whether email should be sent for a notification type.
func (p NotificationPrefs) EmailEnabledFor(notifType string) bool {
	switch notifType {
	case types.NotificationInvitation:
		return p.InvitationEmail
	case types.NotificationStaffChange:
		return p.StaffEmail
	case types.NotificationTaskReminder:
		return p.TaskEmail
	case types.NotificationAIReport:
		return p.AIEmail
	}
	return false
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Farm struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StaffMember struct {
	FarmID   string          `json:"farmId"`
	UserID   string          `json:"userId"`
	Role     types.StaffRole `json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`
	User     *User           `json:"user,omitempty"`
}

type Invitation struct {
	ID            string                 `json:"id"`
	Token         string                 `json:"-"`
	FarmID        string                 `json:"farmId"`
	FarmName      string                 `json:"farmName"`
	InviterID     string                 `json:"inviterId"`
	InvitedEmail  string                 `json:"invitedEmail"`
	InviteeUserID *string                `json:"inviteeUserId,omitempty"`
	Role          types.StaffRole        `json:"role"`
	Status        types.InvitationStatus `json:"status"`
	ExpiresAt     *time.Time             `json:"expiresAt,omitempty"`
	ResolvedAt    *time.Time             `json:"resolvedAt,omitempty"`
	ResolvedBy    *string                `json:"resolvedBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

func (i *Invitation) IsExpired() bool {
	if i.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*i.ExpiresAt)
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FarmID    *string   `json:"farmId,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      *string   `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Field struct {
	ID        string    `json:"id"`
	FarmID    string    `json:"farmId"`
	Name      string    `json:"name"`
	SizeAcres *float64  `json:"sizeAcres,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SoilTest struct {
	ID            string    `json:"id"`
	FarmID        string    `json:"farmId"`
	FieldID       string    `json:"fieldId"`
	TestDate      time.Time `json:"testDate"`
	PH            *float64  `json:"ph,omitempty"`
	OrganicMatter *float64  `json:"organicMatter,omitempty"`
	Nitrogen      *float64  `json:"nitrogen,omitempty"`
	Phosphorus    *float64  `json:"phosphorus,omitempty"`
	Potassium     *float64  `json:"potassium,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Planting struct {
	ID           string     `json:"id"`
	FarmID       string     `json:"farmId"`
	FieldID      *string    `json:"fieldId,omitempty"`
	FieldName    string     `json:"fieldName"`
	CropName     string     `json:"cropName"`
	Variety      *string    `json:"variety,omitempty"`
	SeedingDate  *time.Time `json:"seedingDate,omitempty"`
	PlantingDate *time.Time `json:"plantingDate,omitempty"`
	Quantity     *float64   `json:"quantity,omitempty"`
	QuantityUnit *string    `json:"quantityUnit,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Harvest struct {
	ID            string    `json:"id"`
	FarmID        string    `json:"farmId"`
	PlantingID    *string   `json:"plantingId,omitempty"`
	CropName      string    `json:"cropName"`
	HarvestDate   time.Time `json:"harvestDate"`
	YieldQuantity *float64  `json:"yieldQuantity,omitempty"`
	YieldUnit     *string   `json:"yieldUnit,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Animal struct {
	ID        string     `json:"id"`
	FarmID    string     `json:"farmId"`
	Tag       string     `json:"tag"`
	Species   string     `json:"species"`
	Breed     *string    `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type HealthLog struct {
	ID        string    `json:"id"`
	FarmID    string    `json:"farmId"`
	AnimalID  string    `json:"animalId"`
	AnimalTag string    `json:"animalTag"`
	LogDate   time.Time `json:"logDate"`
	Condition string    `json:"condition"`
	Treatment *string   `json:"treatment,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	FinanceExpense = "expense"
	FinanceIncome  = "income"
)

type FinanceEntry struct {
	ID          string          `json:"id"`
	FarmID      string          `json:"farmId"`
	Kind        string          `json:"kind"`
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type FinanceSummary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Net           decimal.Decimal `json:"net"`
}

type Task struct {
	ID             string     `json:"id"`
	FarmID         string     `json:"farmId"`
	Title          string     `json:"title"`
	Notes          *string    `json:"notes,omitempty"`
	Status         string     `json:"status"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	AssigneeID     *string    `json:"assigneeId,omitempty"`
	ReminderSentAt *time.Time `json:"-"`
	CreatedBy      *string    `json:"createdBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ============================================
// Repository Interfaces
// ============================================

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePrefs(ctx context.Context, userID string, prefs NotificationPrefs) error
	SaveRefreshToken(ctx context.Context, rt *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

type FarmRepository interface {
	Create(ctx context.Context, farm *Farm) error
	FindByID(ctx context.Context, id string) (*Farm, error)
	Update(ctx context.Context, farm *Farm) error
	ListStaff(ctx context.Context, farmID string) ([]*StaffMember, error)
	FindStaff(ctx context.Context, farmID, userID string) (*StaffMember, error)

	// Multi-table mutations. Each runs inside a single transaction so that the
	// invitation, farm_staff and users rows change together or not at all.
	AcceptInvitation(ctx context.Context, invitationID, farmID, userID string, role types.StaffRole) error
	UpdateStaffRole(ctx context.Context, farmID, userID string, role types.StaffRole) error
	RemoveStaff(ctx context.Context, farmID, userID, newFarmName string) (newFarmID string, err error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) ([]*Invitation, error)
	FindByFarm(ctx context.Context, farmID string) ([]*Invitation, error)
	ExistsPendingForEmail(ctx context.Context, farmID, email string) (bool, error)
	MarkStatus(ctx context.Context, id string, status types.InvitationStatus, resolvedBy *string) error
	ExpireOverdue(ctx context.Context) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	Count(ctx context.Context, userID string) (total int, unread int, err error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, age time.Duration) (int, error)
}

type FieldRepository interface {
	Create(ctx context.Context, f *Field) error
	FindByID(ctx context.Context, id string) (*Field, error)
	ListByFarm(ctx context.Context, farmID string) ([]*Field, error)
	Update(ctx context.Context, f *Field) error
	Delete(ctx context.Context, id string) error
	CountByFarm(ctx context.Context, farmID string) (int, error)

	CreateSoilTest(ctx context.Context, st *SoilTest) error
	ListSoilTests(ctx context.Context, fieldID string) ([]*SoilTest, error)
	RecentSoilTests(ctx context.Context, fieldID string, limit int) ([]*SoilTest, error)
	DeleteSoilTest(ctx context.Context, id string) error
}

type PlantingRepository interface {
	Create(ctx context.Context, p *Planting) error
	FindByID(ctx context.Context, id string) (*Planting, error)
	ListByFarm(ctx context.Context, farmID string) ([]*Planting, error)
	Update(ctx context.Context, p *Planting) error
	Delete(ctx context.Context, id string) error
	CountByFarm(ctx context.Context, farmID string) (int, error)

	CreateHarvest(ctx context.Context, h *Harvest) error
	ListHarvests(ctx context.Context, farmID string) ([]*Harvest, error)
	DeleteHarvest(ctx context.Context, id string) error
	RecentHarvests(ctx context.Context, farmID string, limit int) ([]*Harvest, error)
}

type LivestockRepository interface {
	Create(ctx context.Context, a *Animal) error
	FindByID(ctx context.Context, id string) (*Animal, error)
	ListByFarm(ctx context.Context, farmID string) ([]*Animal, error)
	Update(ctx context.Context, a *Animal) error
	Delete(ctx context.Context, id string) error
	CountByFarm(ctx context.Context, farmID string) (int, error)

	CreateHealthLog(ctx context.Context, l *HealthLog) error
	ListHealthLogs(ctx context.Context, animalID string) ([]*HealthLog, error)
	DeleteHealthLog(ctx context.Context, id string) error
}

type FinanceRepository interface {
	Create(ctx context.Context, e *FinanceEntry) error
	ListByFarm(ctx context.Context, farmID, kind string) ([]*FinanceEntry, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*FinanceEntry, error)
	Summary(ctx context.Context, farmID string) (*FinanceSummary, error)
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	ListByFarm(ctx context.Context, farmID string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	CountOpenByFarm(ctx context.Context, farmID string) (int, error)
	FindDueSoon(ctx context.Context, within time.Duration) ([]*Task, error)
	MarkReminderSent(ctx context.Context, id string) error
}
