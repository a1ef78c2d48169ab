package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LoadStatus string

const (
	LoadPending   LoadStatus = "pending"
	LoadAccepted  LoadStatus = "accepted"
	LoadRejected  LoadStatus = "rejected"
	LoadCompleted LoadStatus = "completed"

	// Reserved: declared for clients, never entered by any operation.
	LoadInTransit LoadStatus = "in-transit"
	LoadDelivered LoadStatus = "delivered"
)

// LoadStatuses lists every stored status, reserved ones included.
var LoadStatuses = []LoadStatus{
	LoadPending, LoadAccepted, LoadRejected, LoadCompleted, LoadInTransit, LoadDelivered,
}

func (s LoadStatus) Valid() bool {
	for _, v := range LoadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ShippingType string

const (
	ShippingFTL       ShippingType = "FTL"
	ShippingLTL       ShippingType = "LTL"
	ShippingPartial   ShippingType = "Partial"
	ShippingExpedited ShippingType = "Expedited"
)

func (s ShippingType) Valid() bool {
	switch s {
	case ShippingFTL, ShippingLTL, ShippingPartial, ShippingExpedited:
		return true
	}
	return false
}

// PaymentTerms are the accepted payment windows in days.
var PaymentTerms = []int{30, 45, 60, 90, 120}

const DefaultPaymentTerms = 45

func ValidPaymentTerms(days int) bool {
	for _, d := range PaymentTerms {
		if d == days {
			return true
		}
	}
	return false
}

type Load struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LoadNumber string    `gorm:"size:8;not null;index" json:"load_number"`

	PickupLocation  string  `gorm:"not null;size:500" json:"pickup_location"`
	DropoffLocation string  `gorm:"not null;size:500" json:"dropoff_location"`
	ClientName      string  `gorm:"not null;size:255" json:"client_name"`
	ClientPrice     float64 `gorm:"not null" json:"client_price"`
	DriverPrice     float64 `gorm:"default:0" json:"driver_price"`

	AssignedDriverID *uuid.UUID `gorm:"type:uuid;index:idx_loads_driver_status" json:"assigned_driver_id"`
	AssignedDriver   *User      `gorm:"foreignKey:AssignedDriverID;constraint:OnDelete:SET NULL" json:"assigned_driver,omitempty"`

	ShippingType ShippingType `gorm:"size:20;default:'FTL'" json:"shipping_type"`
	LoadWeight   float64      `gorm:"default:0" json:"load_weight"`
	Pallets      *int         `json:"pallets,omitempty"`

	LoadingDate        time.Time  `gorm:"not null" json:"loading_date"`
	LoadingTime        string     `gorm:"not null;size:20" json:"loading_time"`
	PaymentTerms       int        `gorm:"not null;default:45" json:"payment_terms"`
	ExpectedPayoutDate *time.Time `json:"expected_payout_date"`

	Fuel          float64 `gorm:"default:0" json:"fuel"`
	Tolls         float64 `gorm:"default:0" json:"tolls"`
	OtherExpenses float64 `gorm:"default:0" json:"other_expenses"`

	Status    LoadStatus                  `gorm:"size:20;not null;default:'pending';index:idx_loads_status_creator;index:idx_loads_driver_status" json:"status"`
	Notes     string                      `gorm:"type:text" json:"notes"`
	PODImage  string                      `gorm:"type:text" json:"pod_image"`
	Invoices  datatypes.JSONSlice[string] `json:"invoices"`
	Documents datatypes.JSONSlice[string] `json:"documents"`

	// Revision bumps on every document upload; appends compare-and-swap on it.
	Revision int `gorm:"not null;default:0" json:"-"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null;index:idx_loads_status_creator" json:"created_by"`
	Creator   *User     `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (l *Load) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.LoadNumber = DeriveLoadNumber(l.ID)
	if l.Invoices == nil {
		l.Invoices = datatypes.JSONSlice[string]{}
	}
	if l.Documents == nil {
		l.Documents = datatypes.JSONSlice[string]{}
	}
	return nil
}

// DeriveLoadNumber is the human-facing alternate key: the last 8 characters
// of the id, upper-cased.
func DeriveLoadNumber(id uuid.UUID) string {
	s := id.String()
	return strings.ToUpper(s[len(s)-8:])
}

// IsAssignedTo reports whether the load is assigned to the given driver.
func (l *Load) IsAssignedTo(driverID uuid.UUID) bool {
	return l.AssignedDriverID != nil && *l.AssignedDriverID == driverID
}
