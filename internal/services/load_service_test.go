package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type loadFixture struct {
	db      *gorm.DB
	svc     *LoadService
	pusher  *fakePusher
	manager *models.User
	driverA *models.User
	driverB *models.User
}

func newLoadFixture(t *testing.T) *loadFixture {
	t.Helper()
	db := testutil.NewDB(t)
	pusher := newFakePusher()
	notifications := NewNotificationService(db, pusher)
	return &loadFixture{
		db:      db,
		svc:     NewLoadService(db, testConfig(), notifications),
		pusher:  pusher,
		manager: testutil.CreateUser(t, db, models.RoleManager, "manager"),
		driverA: testutil.CreateUser(t, db, models.RoleDriver, "alice"),
		driverB: testutil.CreateUser(t, db, models.RoleDriver, "bob"),
	}
}

func (f *loadFixture) notificationsFor(t *testing.T, user *models.User) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", user.ID).Order("created_at").Find(&out).Error)
	return out
}

func ptr[T any](v T) *T { return &v }

func validCreate() *dto.CreateLoadRequest {
	return &dto.CreateLoadRequest{
		PickupLocation:  "Piraeus",
		DropoffLocation: "Larissa",
		ClientName:      "Olympus Dairy",
		ClientPrice:     ptr(950.0),
		DriverPrice:     500,
		LoadingDate:     "2025-01-01",
		LoadingTime:     "07:30",
		PaymentTerms:    ptr(30),
	}
}

func TestCreate_DerivesPayoutDate(t *testing.T) {
	f := newLoadFixture(t)

	load, err := f.svc.Create(f.manager.ID, validCreate())
	require.NoError(t, err)

	require.NotNil(t, load.ExpectedPayoutDate)
	assert.Equal(t, "2025-01-31", load.ExpectedPayoutDate.Format("2006-01-02"))
	assert.Equal(t, models.LoadPending, load.Status)
	assert.Equal(t, models.ShippingFTL, load.ShippingType)
	assert.Equal(t, models.DeriveLoadNumber(load.ID), load.LoadNumber)
	require.NotNil(t, load.Creator)
	assert.Equal(t, f.manager.ID, load.Creator.ID)
}

func TestCreate_ValidatesRequiredFields(t *testing.T) {
	f := newLoadFixture(t)

	cases := map[string]func(r *dto.CreateLoadRequest){
		"pickup":        func(r *dto.CreateLoadRequest) { r.PickupLocation = "" },
		"dropoff":       func(r *dto.CreateLoadRequest) { r.DropoffLocation = " " },
		"client name":   func(r *dto.CreateLoadRequest) { r.ClientName = "" },
		"client price":  func(r *dto.CreateLoadRequest) { r.ClientPrice = nil },
		"payment terms": func(r *dto.CreateLoadRequest) { r.PaymentTerms = nil },
		"odd terms":     func(r *dto.CreateLoadRequest) { r.PaymentTerms = ptr(14) },
		"loading date":  func(r *dto.CreateLoadRequest) { r.LoadingDate = "" },
		"loading time":  func(r *dto.CreateLoadRequest) { r.LoadingTime = "" },
		"shipping type": func(r *dto.CreateLoadRequest) { r.ShippingType = "Rail" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreate()
			mutate(req)
			_, err := f.svc.Create(f.manager.ID, req)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}

	var count int64
	f.db.Model(&models.Load{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreate_WithDriverNotifiesDriver(t *testing.T) {
	f := newLoadFixture(t)
	req := validCreate()
	req.DriverID = &f.driverA.ID

	load, err := f.svc.Create(f.manager.ID, req)
	require.NoError(t, err)
	require.NotNil(t, load.AssignedDriver)
	assert.Equal(t, f.driverA.ID, load.AssignedDriver.ID)

	notes := f.notificationsFor(t, f.driverA)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLoadAssigned, notes[0].Type)

	own := f.notificationsFor(t, f.manager)
	require.Len(t, own, 1)
	assert.Equal(t, models.NotificationLoadCreated, own[0].Type)
	assert.Equal(t, load.LoadNumber, own[0].LoadNumber)
}

func TestCreate_UnknownDriver(t *testing.T) {
	f := newLoadFixture(t)
	req := validCreate()
	req.DriverID = &f.manager.ID

	_, err := f.svc.Create(f.manager.ID, req)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestList_ScopedByRole(t *testing.T) {
	f := newLoadFixture(t)
	other := testutil.CreateUser(t, f.db, models.RoleManager, "other")

	testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)
	testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadAccepted)
	testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverB.ID, models.LoadPending)
	testutil.CreateLoad(t, f.db, other.ID, nil, models.LoadPending)

	loads, err := f.svc.List(f.manager, "")
	require.NoError(t, err)
	assert.Len(t, loads, 3)

	loads, err = f.svc.List(f.driverA, "")
	require.NoError(t, err)
	assert.Len(t, loads, 2)

	loads, err = f.svc.List(f.driverA, "accepted")
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, models.LoadAccepted, loads[0].Status)

	_, err = f.svc.List(f.manager, "lost")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestGet_ByLoadNumberMatchesByID(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	byID, err := f.svc.Get(load.ID.String(), f.manager)
	require.NoError(t, err)
	byNumber, err := f.svc.Get(strings.ToLower(load.LoadNumber), f.manager)
	require.NoError(t, err)

	assert.Equal(t, byID.ID, byNumber.ID)
	assert.Equal(t, load.ID.String()[28:], strings.ToLower(byNumber.LoadNumber))

	_, err = f.svc.Get("ZZZZZZZZ", f.manager)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = f.svc.Get("nope", f.manager)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGet_DriverMustBeAssigned(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	_, err := f.svc.Get(load.ID.String(), f.driverB)
	assert.True(t, errors.Is(err, ErrForbidden))

	got, err := f.svc.Get(load.LoadNumber, f.driverA)
	require.NoError(t, err)
	assert.Equal(t, load.ID, got.ID)
}

func TestUpdate_MergePatch(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, nil, models.LoadPending)

	updated, err := f.svc.Update(load.LoadNumber, &dto.UpdateLoadRequest{Notes: ptr("fragile"), Tolls: ptr(32.5)})
	require.NoError(t, err)
	assert.Equal(t, "fragile", updated.Notes)
	assert.Equal(t, 32.5, updated.Tolls)
	assert.Equal(t, "Athens", updated.PickupLocation)
	assert.Equal(t, 1200.0, updated.ClientPrice)
}

func TestUpdate_CompletedIsImmutable(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadCompleted)

	_, err := f.svc.Update(load.ID.String(), &dto.UpdateLoadRequest{Notes: ptr("late edit")})
	assert.True(t, errors.Is(err, ErrInvalidState))

	var stored models.Load
	require.NoError(t, f.db.First(&stored, "id = ?", load.ID).Error)
	assert.Empty(t, stored.Notes)
}

func TestDelete(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, nil, models.LoadCompleted)

	require.NoError(t, f.svc.Delete(load.LoadNumber))
	err := f.svc.Delete(load.ID.String())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAssign_FromRejectedResetsToPending(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadRejected)

	updated, err := f.svc.Assign(load.ID.String(), f.driverB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoadPending, updated.Status)
	assert.True(t, updated.IsAssignedTo(f.driverB.ID))

	notes := f.notificationsFor(t, f.driverB)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLoadAssigned, notes[0].Type)
}

func TestAssign_AcceptedIsRejected(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadAccepted)

	_, err := f.svc.Assign(load.ID.String(), f.driverB.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))

	var stored models.Load
	require.NoError(t, f.db.First(&stored, "id = ?", load.ID).Error)
	assert.True(t, stored.IsAssignedTo(f.driverA.ID))
	assert.Equal(t, models.LoadAccepted, stored.Status)
}

func TestAssign_ReservedStatesAreRejected(t *testing.T) {
	f := newLoadFixture(t)
	for _, status := range []models.LoadStatus{models.LoadCompleted, models.LoadInTransit, models.LoadDelivered} {
		load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, status)
		_, err := f.svc.Assign(load.ID.String(), f.driverB.ID)
		assert.True(t, errors.Is(err, ErrInvalidState), "status %s", status)
	}
}

func TestAssign_RequiresDriver(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, nil, models.LoadPending)

	_, err := f.svc.Assign(load.ID.String(), f.manager.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAccept_OtherDriverForbidden(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	_, err := f.svc.Accept(load.ID.String(), f.driverB)
	assert.True(t, errors.Is(err, ErrForbidden))

	var stored models.Load
	require.NoError(t, f.db.First(&stored, "id = ?", load.ID).Error)
	assert.Equal(t, models.LoadPending, stored.Status)
	assert.Empty(t, f.notificationsFor(t, f.manager))
}

func TestDriverActions_ForbiddenUnlessAssignedInEveryStatus(t *testing.T) {
	actions := map[string]func(f *loadFixture, id string, driver *models.User) error{
		"accept": func(f *loadFixture, id string, d *models.User) error {
			_, err := f.svc.Accept(id, d)
			return err
		},
		"decline": func(f *loadFixture, id string, d *models.User) error {
			_, err := f.svc.Decline(id, d)
			return err
		},
		"pod": func(f *loadFixture, id string, d *models.User) error {
			_, err := f.svc.UploadPOD(id, d, "data:image/png;base64,AAAA")
			return err
		},
		"documents": func(f *loadFixture, id string, d *models.User) error {
			_, err := f.svc.UploadDocuments(id, d, []string{"https://files.test/inv.pdf"}, nil)
			return err
		},
	}

	for _, status := range models.LoadStatuses {
		for name, act := range actions {
			t.Run(string(status)+"/"+name, func(t *testing.T) {
				f := newLoadFixture(t)
				assigned := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, status)
				unassigned := testutil.CreateLoad(t, f.db, f.manager.ID, nil, status)

				for _, load := range []*models.Load{assigned, unassigned} {
					err := act(f, load.ID.String(), f.driverB)
					assert.ErrorIs(t, err, ErrForbidden)

					var stored models.Load
					require.NoError(t, f.db.First(&stored, "id = ?", load.ID).Error)
					assert.Equal(t, status, stored.Status)
					assert.Empty(t, stored.PODImage)
					assert.Empty(t, stored.Invoices)
				}
				assert.Empty(t, f.notificationsFor(t, f.manager))
			})
		}
	}
}

func TestAccept_NotifiesManager(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	updated, err := f.svc.Accept(load.LoadNumber, f.driverA)
	require.NoError(t, err)
	assert.Equal(t, models.LoadAccepted, updated.Status)

	notes := f.notificationsFor(t, f.manager)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLoadAccepted, notes[0].Type)
	assert.Equal(t, "alice", notes[0].Params["driverName"])

	_, err = f.svc.Accept(load.ID.String(), f.driverA)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestDecline(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	updated, err := f.svc.Decline(load.ID.String(), f.driverA)
	require.NoError(t, err)
	assert.Equal(t, models.LoadRejected, updated.Status)

	_, err = f.svc.Accept(load.ID.String(), f.driverA)
	assert.True(t, errors.Is(err, ErrInvalidState))

	notes := f.notificationsFor(t, f.manager)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLoadRejected, notes[0].Type)
}

func TestAccept_ConcurrentOnlyOneWins(t *testing.T) {
	f := newLoadFixture(t)
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Accept(load.ID.String(), f.driverA)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, ErrInvalidState), "got %v", err)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, f.notificationsFor(t, f.manager), 1)
}

func TestUploadPOD_CompletesAndNotifies(t *testing.T) {
	f := newLoadFixture(t)
	f.pusher.online[f.manager.ID] = true
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadAccepted)

	updated, err := f.svc.UploadPOD(load.ID.String(), f.driverA, "https://res.cloudinary.com/demo/pod.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.LoadCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, "https://res.cloudinary.com/demo/pod.jpg", updated.PODImage)

	notes := f.notificationsFor(t, f.manager)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLoadCompleted, notes[0].Type)
	assert.Len(t, f.pusher.pushes(), 1)
}

func TestUploadPOD_Rules(t *testing.T) {
	f := newLoadFixture(t)
	pending := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)
	accepted := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadAccepted)

	_, err := f.svc.UploadPOD(accepted.ID.String(), f.driverA, "ftp://files/pod.jpg")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = f.svc.UploadPOD(accepted.ID.String(), f.driverB, "data:image/png;base64,AAAA")
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.svc.UploadPOD(pending.ID.String(), f.driverA, "data:image/png;base64,AAAA")
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = f.svc.UploadPOD(accepted.ID.String(), f.driverA, "data:image/png;base64,AAAA")
	require.NoError(t, err)
}

func TestUploadDocuments_StrictPolicy(t *testing.T) {
	f := newLoadFixture(t)
	pending := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)
	accepted := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadAccepted)

	_, err := f.svc.UploadDocuments(accepted.ID.String(), f.driverA, nil, []string{" "})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = f.svc.UploadDocuments(pending.ID.String(), f.driverA, []string{"https://cdn/inv.pdf"}, nil)
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = f.svc.UploadDocuments(accepted.ID.String(), f.driverB, []string{"https://cdn/inv.pdf"}, nil)
	assert.True(t, errors.Is(err, ErrForbidden))

	updated, err := f.svc.UploadDocuments(accepted.ID.String(), f.driverA, []string{"https://cdn/inv.pdf"}, []string{"https://cdn/cmr.pdf"})
	require.NoError(t, err)
	assert.Equal(t, models.LoadCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, []string{"https://cdn/inv.pdf"}, []string(updated.Invoices))
	assert.Equal(t, []string{"https://cdn/cmr.pdf"}, []string(updated.Documents))

	notes := f.notificationsFor(t, f.manager)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationDocumentsUploaded, notes[0].Type)
}

func TestUploadDocuments_LenientPolicyAppends(t *testing.T) {
	f := newLoadFixture(t)
	f.svc.cfg.DocumentsRequireAccepted = false
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadPending)

	_, err := f.svc.UploadDocuments(load.ID.String(), f.driverA, []string{"inv-1"}, nil)
	require.NoError(t, err)
	updated, err := f.svc.UploadDocuments(load.ID.String(), f.driverA, []string{"inv-2"}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.LoadCompleted, updated.Status)
	assert.Equal(t, []string{"inv-1", "inv-2"}, []string(updated.Invoices))
}

func TestUploadDocuments_ConcurrentAppendsKeepEveryFile(t *testing.T) {
	f := newLoadFixture(t)
	f.svc.cfg.DocumentsRequireAccepted = false
	load := testutil.CreateLoad(t, f.db, f.manager.ID, &f.driverA.ID, models.LoadAccepted)

	files := []string{"inv-1", "inv-2", "inv-3", "inv-4"}
	var wg sync.WaitGroup
	errs := make(chan error, len(files))
	for _, file := range files {
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			_, err := f.svc.UploadDocuments(load.ID.String(), f.driverA, []string{file}, nil)
			errs <- err
		}(file)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var stored models.Load
	require.NoError(t, f.db.First(&stored, "id = ?", load.ID).Error)
	assert.ElementsMatch(t, files, []string(stored.Invoices))
	assert.Equal(t, len(files), stored.Revision)
	assert.Equal(t, models.LoadCompleted, stored.Status)
}
