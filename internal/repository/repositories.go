package repository

type Repositories struct {
	UserRepo         UserRepository
	FarmRepo         FarmRepository
	InvitationRepo   InvitationRepository
	NotificationRepo NotificationRepository
	FieldRepo        FieldRepository
	PlantingRepo     PlantingRepository
	LivestockRepo    LivestockRepository
	FinanceRepo      FinanceRepository
	TaskRepo         TaskRepository
}

func NewRepositories(db Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(db),
		FarmRepo:         NewFarmRepository(db),
		InvitationRepo:   NewInvitationRepository(db),
		NotificationRepo: NewNotificationRepository(db),
		FieldRepo:        NewFieldRepository(db),
		PlantingRepo:     NewPlantingRepository(db),
		LivestockRepo:    NewLivestockRepository(db),
		FinanceRepo:      NewFinanceRepository(db),
		TaskRepo:         NewTaskRepository(db),
	}
}
