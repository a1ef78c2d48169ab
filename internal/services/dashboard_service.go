package services

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OnlineCounter reports how many live connections a role has.
type OnlineCounter interface {
	OnlineInRole(role models.Role) int
}

type DashboardService struct {
	db     *gorm.DB
	online OnlineCounter
}

func NewDashboardService(db *gorm.DB, online OnlineCounter) *DashboardService {
	return &DashboardService{db: db, online: online}
}

type statusTotals struct {
	Status      models.LoadStatus
	Count       int64
	ClientTotal float64
	DriverTotal float64
}

func (s *DashboardService) totals(column string, userID uuid.UUID) (map[models.LoadStatus]statusTotals, error) {
	var rows []statusTotals
	err := s.db.Model(&models.Load{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(client_price), 0) AS client_total, COALESCE(SUM(driver_price), 0) AS driver_total").
		Where(column+" = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[models.LoadStatus]statusTotals, len(rows))
	for _, r := range rows {
		out[r.Status] = r
	}
	return out, nil
}

func (s *DashboardService) Manager(managerID uuid.UUID) (*dto.ManagerDashboard, error) {
	t, err := s.totals("created_by", managerID)
	if err != nil {
		return nil, err
	}

	d := &dto.ManagerDashboard{
		AcceptedLoads:   t[models.LoadAccepted].Count,
		CompletedLoads:  t[models.LoadCompleted].Count,
		PendingLoads:    t[models.LoadPending].Count,
		RejectedLoads:   t[models.LoadRejected].Count,
		TotalIncome:     t[models.LoadCompleted].ClientTotal,
		PendingPayments: t[models.LoadAccepted].ClientTotal,
	}
	for _, row := range t {
		d.TotalLoads += row.Count
	}

	if err := s.db.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleDriver, true).
		Count(&d.ActiveDrivers).Error; err != nil {
		return nil, err
	}
	if s.online != nil {
		d.OnlineDrivers = s.online.OnlineInRole(models.RoleDriver)
	}
	return d, nil
}

func (s *DashboardService) Driver(driverID uuid.UUID) (*dto.DriverDashboard, error) {
	t, err := s.totals("assigned_driver_id", driverID)
	if err != nil {
		return nil, err
	}
	return &dto.DriverDashboard{
		AssignedLoads:   t[models.LoadPending].Count,
		AcceptedLoads:   t[models.LoadAccepted].Count,
		CompletedLoads:  t[models.LoadCompleted].Count,
		RejectedLoads:   t[models.LoadRejected].Count,
		TotalEarnings:   t[models.LoadCompleted].DriverTotal,
		PendingEarnings: t[models.LoadAccepted].DriverTotal,
	}, nil
}
