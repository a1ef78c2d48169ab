package dto

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
)

type CreateLoadRequest struct {
	PickupLocation     string     `json:"pickup_location"`
	DropoffLocation    string     `json:"dropoff_location"`
	ClientName         string     `json:"client_name"`
	ClientPrice        *float64   `json:"client_price"`
	DriverPrice        float64    `json:"driver_price"`
	DriverID           *uuid.UUID `json:"driver_id"`
	ShippingType       string     `json:"shipping_type"`
	LoadWeight         float64    `json:"load_weight"`
	Pallets            *int       `json:"pallets"`
	LoadingDate        string     `json:"loading_date"`
	LoadingTime        string     `json:"loading_time"`
	PaymentTerms       *int       `json:"payment_terms"`
	ExpectedPayoutDate string     `json:"expected_payout_date"`
	Fuel               float64    `json:"fuel"`
	Tolls              float64    `json:"tolls"`
	OtherExpenses      float64    `json:"other_expenses"`
	Notes              string     `json:"notes"`
}

// UpdateLoadRequest is a merge patch: nil fields are left untouched.
type UpdateLoadRequest struct {
	PickupLocation     *string  `json:"pickup_location"`
	DropoffLocation    *string  `json:"dropoff_location"`
	ClientName         *string  `json:"client_name"`
	ClientPrice        *float64 `json:"client_price"`
	DriverPrice        *float64 `json:"driver_price"`
	ShippingType       *string  `json:"shipping_type"`
	LoadWeight         *float64 `json:"load_weight"`
	Pallets            *int     `json:"pallets"`
	LoadingDate        *string  `json:"loading_date"`
	LoadingTime        *string  `json:"loading_time"`
	PaymentTerms       *int     `json:"payment_terms"`
	ExpectedPayoutDate *string  `json:"expected_payout_date"`
	Fuel               *float64 `json:"fuel"`
	Tolls              *float64 `json:"tolls"`
	OtherExpenses      *float64 `json:"other_expenses"`
	Notes              *string  `json:"notes"`
}

type AssignLoadRequest struct {
	DriverID uuid.UUID `json:"driver_id"`
}

type UploadPODRequest struct {
	Image string `json:"image"`
}

type UploadDocumentsRequest struct {
	Invoices  []string `json:"invoices"`
	Documents []string `json:"documents"`
}

type LoadEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Load    *models.Load `json:"load"`
}

type LoadsEnvelope struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Loads   []models.Load `json:"loads"`
}
