package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_ManagerAndDriver(t *testing.T) {
	db := testutil.NewDB(t)
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager")
	driver := testutil.CreateUser(t, db, models.RoleDriver, "driver")
	other := testutil.CreateUser(t, db, models.RoleManager, "other")

	testutil.CreateLoad(t, db, manager.ID, &driver.ID, models.LoadPending)
	testutil.CreateLoad(t, db, manager.ID, &driver.ID, models.LoadAccepted)
	testutil.CreateLoad(t, db, manager.ID, &driver.ID, models.LoadCompleted)
	testutil.CreateLoad(t, db, manager.ID, &driver.ID, models.LoadCompleted)
	testutil.CreateLoad(t, db, manager.ID, nil, models.LoadRejected)
	testutil.CreateLoad(t, db, other.ID, &driver.ID, models.LoadCompleted)

	reg := realtime.NewRegistry()
	reg.Register(realtime.NewClient(driver.ID, models.RoleDriver))
	defer reg.Close()
	svc := NewDashboardService(db, reg)

	m, err := svc.Manager(manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.TotalLoads)
	assert.Equal(t, int64(1), m.PendingLoads)
	assert.Equal(t, int64(1), m.AcceptedLoads)
	assert.Equal(t, int64(2), m.CompletedLoads)
	assert.Equal(t, int64(1), m.RejectedLoads)
	assert.Equal(t, 2400.0, m.TotalIncome)
	assert.Equal(t, 1200.0, m.PendingPayments)
	assert.Equal(t, int64(1), m.ActiveDrivers)
	assert.Equal(t, 1, m.OnlineDrivers)

	d, err := svc.Driver(driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.AssignedLoads)
	assert.Equal(t, int64(1), d.AcceptedLoads)
	assert.Equal(t, int64(3), d.CompletedLoads)
	assert.Equal(t, 2100.0, d.TotalEarnings)
	assert.Equal(t, 700.0, d.PendingEarnings)
}

func TestDashboard_Empty(t *testing.T) {
	db := testutil.NewDB(t)
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager")

	m, err := NewDashboardService(db, nil).Manager(manager.ID)
	require.NoError(t, err)
	assert.Zero(t, m.TotalLoads)
	assert.Zero(t, m.TotalIncome)
}
