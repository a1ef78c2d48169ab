package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LoadService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
	now           func() time.Time
}

func NewLoadService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *LoadService {
	return &LoadService{db: db, cfg: cfg, notifications: notifications, now: time.Now}
}

func (s *LoadService) Create(managerID uuid.UUID, req *dto.CreateLoadRequest) (*models.Load, error) {
	switch {
	case strings.TrimSpace(req.PickupLocation) == "" || strings.TrimSpace(req.DropoffLocation) == "":
		return nil, validationError("Pickup and dropoff locations are required")
	case strings.TrimSpace(req.ClientName) == "":
		return nil, validationError("Client name is required")
	case req.ClientPrice == nil || req.PaymentTerms == nil:
		return nil, validationError("Client price and payment terms are required")
	case strings.TrimSpace(req.LoadingDate) == "" || strings.TrimSpace(req.LoadingTime) == "":
		return nil, validationError("Loading date and time are required")
	}
	if *req.ClientPrice < 0 {
		return nil, validationError("Client price cannot be negative")
	}
	if !models.ValidPaymentTerms(*req.PaymentTerms) {
		return nil, validationError(fmt.Sprintf("Payment terms must be one of %v", models.PaymentTerms))
	}

	shipping := models.ShippingFTL
	if req.ShippingType != "" {
		shipping = models.ShippingType(req.ShippingType)
		if !shipping.Valid() {
			return nil, validationError("Invalid shipping type")
		}
	}

	loadingDate, err := dto.ParseDate(req.LoadingDate)
	if err != nil {
		return nil, validationError("Invalid loading date")
	}
	payout := dto.PayoutDate(loadingDate, *req.PaymentTerms)
	if req.ExpectedPayoutDate != "" {
		if payout, err = dto.ParseDate(req.ExpectedPayoutDate); err != nil {
			return nil, validationError("Invalid expected payout date")
		}
	}

	if req.DriverID != nil {
		if _, err := s.findDriver(*req.DriverID); err != nil {
			return nil, err
		}
	}

	load := &models.Load{
		PickupLocation:     strings.TrimSpace(req.PickupLocation),
		DropoffLocation:    strings.TrimSpace(req.DropoffLocation),
		ClientName:         strings.TrimSpace(req.ClientName),
		ClientPrice:        *req.ClientPrice,
		DriverPrice:        req.DriverPrice,
		AssignedDriverID:   req.DriverID,
		ShippingType:       shipping,
		LoadWeight:         req.LoadWeight,
		Pallets:            req.Pallets,
		LoadingDate:        loadingDate,
		LoadingTime:        strings.TrimSpace(req.LoadingTime),
		PaymentTerms:       *req.PaymentTerms,
		ExpectedPayoutDate: &payout,
		Fuel:               req.Fuel,
		Tolls:              req.Tolls,
		OtherExpenses:      req.OtherExpenses,
		Notes:              req.Notes,
		Status:             models.LoadPending,
		CreatedBy:          managerID,
	}
	if err := s.db.Create(load).Error; err != nil {
		return nil, fmt.Errorf("failed to create load: %w", err)
	}

	created, err := s.byID(load.ID)
	if err != nil {
		return nil, err
	}
	s.notify(created, func() error {
		_, err := s.notifications.NotifyLoadCreated(managerID, created)
		return err
	})
	if req.DriverID != nil {
		s.notify(created, func() error {
			_, err := s.notifications.NotifyLoadAssigned(*req.DriverID, created)
			return err
		})
	}
	return created, nil
}

// List returns the caller's loads, newest first: loads a manager created or
// loads assigned to a driver.
func (s *LoadService) List(caller *models.User, status string) ([]models.Load, error) {
	q := s.withRelations(s.db)
	if caller.Role == models.RoleDriver {
		q = q.Where("assigned_driver_id = ?", caller.ID)
	} else {
		q = q.Where("created_by = ?", caller.ID)
	}
	if status != "" {
		if !models.LoadStatus(status).Valid() {
			return nil, validationError("Invalid status filter")
		}
		q = q.Where("status = ?", status)
	}

	var loads []models.Load
	if err := q.Order("created_at DESC").Find(&loads).Error; err != nil {
		return nil, err
	}
	return loads, nil
}

func (s *LoadService) Get(idOrNumber string, caller *models.User) (*models.Load, error) {
	load, err := s.Find(idOrNumber)
	if err != nil {
		return nil, err
	}
	if caller.Role == models.RoleDriver && !load.IsAssignedTo(caller.ID) {
		return nil, forbiddenError("Not authorized to view this load")
	}
	return load, nil
}

func (s *LoadService) Update(idOrNumber string, req *dto.UpdateLoadRequest) (*models.Load, error) {
	load, err := s.Find(idOrNumber)
	if err != nil {
		return nil, err
	}
	if load.Status == models.LoadCompleted {
		return nil, stateError("Cannot update a completed load")
	}

	cols, err := req.Apply(load)
	if err != nil {
		return nil, validationError(err.Error())
	}
	if len(cols) == 0 {
		return load, nil
	}

	res := s.db.Model(&models.Load{}).
		Where("id = ? AND status <> ?", load.ID, models.LoadCompleted).
		Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update load: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, stateError("Cannot update a completed load")
	}
	return s.byID(load.ID)
}

func (s *LoadService) Delete(idOrNumber string) error {
	load, err := s.Find(idOrNumber)
	if err != nil {
		return err
	}
	res := s.db.Delete(&models.Load{}, "id = ?", load.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLoadNotFound
	}
	return nil
}

// assignableFrom lists the states a load may be (re)assigned from.
// maxUploadAttempts bounds the re-read loop when concurrent uploads collide.
const maxUploadAttempts = 5

var assignableFrom = []models.LoadStatus{models.LoadPending, models.LoadRejected}

func (s *LoadService) Assign(idOrNumber string, driverID uuid.UUID) (*models.Load, error) {
	if driverID == uuid.Nil {
		return nil, validationError("Driver ID is required")
	}
	load, err := s.Find(idOrNumber)
	if err != nil {
		return nil, err
	}
	if !statusIn(load.Status, assignableFrom) {
		return nil, stateError("Cannot reassign a load that is already accepted or completed")
	}
	if _, err := s.findDriver(driverID); err != nil {
		return nil, err
	}

	if err := s.transition(load.ID, assignableFrom, map[string]interface{}{
		"assigned_driver_id": driverID,
		"status":             models.LoadPending,
	}, "Cannot reassign a load that is already accepted or completed"); err != nil {
		return nil, err
	}

	updated, err := s.byID(load.ID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, func() error {
		_, err := s.notifications.NotifyLoadAssigned(driverID, updated)
		return err
	})
	return updated, nil
}

func (s *LoadService) Accept(idOrNumber string, driver *models.User) (*models.Load, error) {
	load, err := s.respond(idOrNumber, driver, models.LoadAccepted, "accept")
	if err != nil {
		return nil, err
	}
	s.notify(load, func() error {
		_, err := s.notifications.NotifyLoadAccepted(load.CreatedBy, load, driver.Name)
		return err
	})
	return load, nil
}

func (s *LoadService) Decline(idOrNumber string, driver *models.User) (*models.Load, error) {
	load, err := s.respond(idOrNumber, driver, models.LoadRejected, "decline")
	if err != nil {
		return nil, err
	}
	s.notify(load, func() error {
		_, err := s.notifications.NotifyLoadRejected(load.CreatedBy, load, driver.Name)
		return err
	})
	return load, nil
}

// respond moves a pending load to accepted or rejected on behalf of its
// assigned driver.
func (s *LoadService) respond(idOrNumber string, driver *models.User, to models.LoadStatus, verb string) (*models.Load, error) {
	load, err := s.Find(idOrNumber)
	if err != nil {
		return nil, err
	}
	if !load.IsAssignedTo(driver.ID) {
		return nil, ErrNotAssigned
	}
	msg := fmt.Sprintf("Cannot %s a load with status '%s'", verb, load.Status)
	if load.Status != models.LoadPending {
		return nil, stateError(msg)
	}

	res := s.db.Model(&models.Load{}).
		Where("id = ? AND status = ? AND assigned_driver_id = ?", load.ID, models.LoadPending, driver.ID).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, stateError(msg)
	}
	return s.byID(load.ID)
}

func (s *LoadService) UploadPOD(idOrNumber string, driver *models.User, image string) (*models.Load, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, validationError("Please provide an image")
	}
	if !validImageRef(image) {
		return nil, validationError("Invalid image format. Expected an image URL or a base64 data URI.")
	}

	load, err := s.Find(idOrNumber)
	if err != nil {
		return nil, err
	}
	if !load.IsAssignedTo(driver.ID) {
		return nil, ErrNotAssigned
	}
	if load.Status != models.LoadAccepted {
		return nil, stateError("Can only upload POD for accepted loads")
	}

	if err := s.transition(load.ID, []models.LoadStatus{models.LoadAccepted}, map[string]interface{}{
		"pod_image":    image,
		"status":       models.LoadCompleted,
		"completed_at": s.now().UTC(),
	}, "Can only upload POD for accepted loads"); err != nil {
		return nil, err
	}

	updated, err := s.byID(load.ID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, func() error {
		_, err := s.notifications.NotifyLoadCompleted(updated.CreatedBy, updated, driver.Name)
		return err
	})
	return updated, nil
}

func (s *LoadService) UploadDocuments(idOrNumber string, driver *models.User, invoices, documents []string) (*models.Load, error) {
	invoices, documents = compact(invoices), compact(documents)
	if len(invoices) == 0 && len(documents) == 0 {
		return nil, validationError("Please provide at least one invoice or document")
	}

	load, err := s.Find(idOrNumber)
	if err != nil {
		return nil, err
	}

	const msg = "Documents can only be uploaded for accepted loads"
	for attempt := 0; ; attempt++ {
		if !load.IsAssignedTo(driver.ID) {
			return nil, ErrNotAssigned
		}
		from := []models.LoadStatus{load.Status}
		if s.cfg.DocumentsRequireAccepted {
			if load.Status != models.LoadAccepted {
				return nil, stateError(msg)
			}
			from = []models.LoadStatus{models.LoadAccepted}
		}

		allInvoices := append(append([]string{}, load.Invoices...), invoices...)
		allDocuments := append(append([]string{}, load.Documents...), documents...)

		res := s.db.Model(&models.Load{}).
			Where("id = ? AND status IN ? AND revision = ?", load.ID, from, load.Revision).
			Updates(map[string]interface{}{
				"invoices":     datatypes.JSONSlice[string](allInvoices),
				"documents":    datatypes.JSONSlice[string](allDocuments),
				"status":       models.LoadCompleted,
				"completed_at": s.now().UTC(),
				"revision":     gorm.Expr("revision + 1"),
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update load: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			break
		}
		// Another upload or transition won the race; re-read and append onto it.
		if attempt >= maxUploadAttempts-1 {
			return nil, stateError("The load changed while uploading, please retry")
		}
		if load, err = s.byID(load.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.byID(load.ID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, func() error {
		_, err := s.notifications.NotifyDocumentsUploaded(updated.CreatedBy, updated, driver.Name)
		return err
	})
	return updated, nil
}

// Find resolves a load by primary id or, failing that, by its load number.
func (s *LoadService) Find(idOrNumber string) (*models.Load, error) {
	idOrNumber = strings.TrimSpace(idOrNumber)
	if id, err := uuid.Parse(idOrNumber); err == nil {
		return s.byID(id)
	}
	if len(idOrNumber) != 8 {
		return nil, ErrLoadNotFound
	}

	var load models.Load
	err := s.withRelations(s.db).
		Where("load_number = ?", strings.ToUpper(idOrNumber)).
		Order("created_at ASC").
		First(&load).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoadNotFound
		}
		return nil, err
	}
	return &load, nil
}

func (s *LoadService) byID(id uuid.UUID) (*models.Load, error) {
	var load models.Load
	if err := s.withRelations(s.db).First(&load, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoadNotFound
		}
		return nil, err
	}
	return &load, nil
}

func (s *LoadService) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "email", "role") }).
		Preload("AssignedDriver", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "email", "phone", "role") })
}

func (s *LoadService) findDriver(id uuid.UUID) (*models.User, error) {
	var driver models.User
	if err := s.db.Where("id = ? AND role = ?", id, models.RoleDriver).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// transition applies cols only while the load is still in one of the given
// states, so concurrent transitions cannot both succeed.
func (s *LoadService) transition(id uuid.UUID, from []models.LoadStatus, cols map[string]interface{}, msg string) error {
	res := s.db.Model(&models.Load{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("failed to update load: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return stateError(msg)
	}
	return nil
}

func (s *LoadService) notify(load *models.Load, send func() error) {
	if s.notifications == nil {
		return
	}
	if err := send(); err != nil {
		slog.Warn("load notification failed",
			"load_id", load.ID.String(),
			"load_number", load.LoadNumber,
			"error", err,
		)
	}
}

func statusIn(status models.LoadStatus, set []models.LoadStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func validImageRef(ref string) bool {
	if strings.HasPrefix(ref, "data:image/") {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func compact(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
