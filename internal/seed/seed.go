// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// SeedData creates a demo farm with an owner, staff, fields, plantings and
// records. Safe to call repeatedly: it skips when the owner already exists.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	if existing, _ := repos.UserRepo.FindByEmail(ctx, "janet@greenacres.example"); existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] Creating demo farm data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// Owner
	janet := &repository.User{
		Email:    "janet@greenacres.example",
		Password: string(password),
		Name:     "Janet Obi",
		Prefs: repository.NotificationPrefs{
			InvitationEmail: true,
			StaffEmail:      true,
			TaskEmail:       true,
		},
	}
	repos.UserRepo.Create(ctx, janet)

	farm := &repository.Farm{OwnerID: janet.ID, Name: "Green Acres"}
	repos.FarmRepo.Create(ctx, farm)

	janet.FarmID = &farm.ID
	janet.IsFarmOwner = true
	repos.UserRepo.Update(ctx, janet)

	// Staff: one editor, one viewer
	marco := &repository.User{
		Email:    "marco@greenacres.example",
		Password: string(password),
		Name:     "Marco Reyes",
		Prefs:    repository.NotificationPrefs{TaskEmail: true},
	}
	repos.UserRepo.Create(ctx, marco)
	joinFarm(ctx, repos, marco, farm, types.RoleEditor)

	ada := &repository.User{
		Email:    "ada@greenacres.example",
		Password: string(password),
		Name:     "Ada Lindqvist",
	}
	repos.UserRepo.Create(ctx, ada)
	joinFarm(ctx, repos, ada, farm, types.RoleViewer)

	// Fields
	north := &repository.Field{FarmID: farm.ID, Name: "North Paddock", SizeAcres: f64(12.5)}
	repos.FieldRepo.Create(ctx, north)
	south := &repository.Field{FarmID: farm.ID, Name: "South Slope", SizeAcres: f64(8.0)}
	repos.FieldRepo.Create(ctx, south)

	// Soil test
	repos.FieldRepo.CreateSoilTest(ctx, &repository.SoilTest{
		FarmID:        farm.ID,
		FieldID:       north.ID,
		TestDate:      time.Now().AddDate(0, -2, 0),
		PH:            f64(6.4),
		OrganicMatter: f64(3.8),
		Nitrogen:      f64(22),
		Phosphorus:    f64(14),
		Potassium:     f64(180),
	})

	// Plantings and a harvest
	planting := &repository.Planting{
		FarmID:       farm.ID,
		FieldID:      &north.ID,
		FieldName:    north.Name,
		CropName:     "Winter Wheat",
		PlantingDate: timePtr(time.Now().AddDate(0, -5, 0)),
		Quantity:     f64(120),
		QuantityUnit: strPtr("kg seed"),
	}
	repos.PlantingRepo.Create(ctx, planting)

	repos.PlantingRepo.CreateHarvest(ctx, &repository.Harvest{
		FarmID:        farm.ID,
		PlantingID:    &planting.ID,
		CropName:      planting.CropName,
		HarvestDate:   time.Now().AddDate(0, -1, 0),
		YieldQuantity: f64(4100),
		YieldUnit:     strPtr("kg"),
	})

	// Livestock
	bessie := &repository.Animal{
		FarmID:  farm.ID,
		Tag:     "GA-001",
		Species: "Cattle",
		Breed:   strPtr("Holstein"),
	}
	repos.LivestockRepo.Create(ctx, bessie)

	repos.LivestockRepo.CreateHealthLog(ctx, &repository.HealthLog{
		FarmID:    farm.ID,
		AnimalID:  bessie.ID,
		AnimalTag: bessie.Tag,
		LogDate:   time.Now().AddDate(0, 0, -10),
		Condition: "Routine check",
		Treatment: strPtr("Vaccination booster"),
	})

	// Finances
	repos.FinanceRepo.Create(ctx, &repository.FinanceEntry{
		FarmID:      farm.ID,
		Kind:        repository.FinanceIncome,
		EntryDate:   time.Now().AddDate(0, -1, 0),
		Description: "Wheat sale",
		Category:    types.FinanceCategorySales,
		Amount:      decimal.NewFromInt(8200),
	})
	repos.FinanceRepo.Create(ctx, &repository.FinanceEntry{
		FarmID:      farm.ID,
		Kind:        repository.FinanceExpense,
		EntryDate:   time.Now().AddDate(0, -3, 0),
		Description: "Seed purchase",
		Category:    types.FinanceCategorySeed,
		Amount:      decimal.NewFromInt(1450),
	})

	// Tasks
	repos.TaskRepo.Create(ctx, &repository.Task{
		FarmID:     farm.ID,
		Title:      "Repair fence on South Slope",
		Status:     types.TaskTodo,
		DueDate:    timePtr(time.Now().AddDate(0, 0, 3)),
		AssigneeID: &marco.ID,
		CreatedBy:  &janet.ID,
	})

	log.Println("[Seed] Demo farm data created")
}

func joinFarm(ctx context.Context, repos *repository.Repositories, user *repository.User, farm *repository.Farm, role types.StaffRole) {
	inv := &repository.Invitation{
		FarmID:        farm.ID,
		FarmName:      farm.Name,
		InviterID:     farm.OwnerID,
		InvitedEmail:  user.Email,
		InviteeUserID: &user.ID,
		Role:          role,
		Status:        types.InvitationPending,
	}
	repos.InvitationRepo.Create(ctx, inv)
	repos.FarmRepo.AcceptInvitation(ctx, inv.ID, farm.ID, user.ID, role)
}

func f64(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
