package services

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportLoads(t *testing.T) {
	db := testutil.NewDB(t)
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager")
	driver := testutil.CreateUser(t, db, models.RoleDriver, "driver")
	assigned := testutil.CreateLoad(t, db, manager.ID, &driver.ID, models.LoadAccepted)
	testutil.CreateLoad(t, db, manager.ID, nil, models.LoadPending)

	svc := NewExportService(db)
	data, n, err := svc.Loads(manager.ID, ExportFilter{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Load Number", rows[0][0])
	assert.Equal(t, assigned.LoadNumber, rows[1][0])
	assert.Equal(t, "driver", rows[1][11])
	assert.Equal(t, "accepted", rows[1][10])
}

func TestExportLoads_DateRangeAndBadStatus(t *testing.T) {
	db := testutil.NewDB(t)
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager")
	testutil.CreateLoad(t, db, manager.ID, nil, models.LoadPending)

	svc := NewExportService(db)
	future := time.Now().Add(24 * time.Hour)
	_, n, err := svc.Loads(manager.ID, ExportFilter{StartDate: &future})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, _, err = svc.Loads(manager.ID, ExportFilter{Status: "gone"})
	assert.True(t, errors.Is(err, ErrValidation))
}
