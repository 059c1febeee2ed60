package types

// StaffRole is the role a staff member holds on a farm. The farm owner is a
// distinct status and never appears in this enumeration.
type StaffRole string

const (
	RoleAdmin  StaffRole = "admin"
	RoleEditor StaffRole = "editor"
	RoleViewer StaffRole = "viewer"
)

func (r StaffRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may create or mutate farm records.
func (r StaffRole) CanWrite() bool {
	return r == RoleAdmin || r == RoleEditor
}

// InvitationStatus is the closed set of invitation states. Every state other
// than pending is terminal.
type InvitationStatus string

const (
	InvitationPending      InvitationStatus = "pending"
	InvitationAccepted     InvitationStatus = "accepted"
	InvitationDeclined     InvitationStatus = "declined"
	InvitationRevoked      InvitationStatus = "revoked"
	InvitationExpired      InvitationStatus = "expired"
	InvitationFarmNotFound InvitationStatus = "error_farm_not_found"
)

func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}

// Notification types
const (
	NotificationInvitation   = "invitation"
	NotificationStaffChange  = "staff_change"
	NotificationTaskReminder = "task_reminder"
	NotificationAIReport     = "ai_report"
	NotificationGeneral      = "general"
)

// Task status values
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

func ValidTaskStatus(s string) bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskDone
}

// Finance categories are free-form but these are the ones the UI offers.
const (
	FinanceCategorySeed      = "seed"
	FinanceCategoryFeed      = "feed"
	FinanceCategoryFuel      = "fuel"
	FinanceCategoryEquipment = "equipment"
	FinanceCategoryLabour    = "labour"
	FinanceCategorySales     = "sales"
	FinanceCategoryOther     = "other"
)
