package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseDate accepts a calendar date or a full timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// PayoutDate is the loading date shifted by the payment terms.
func PayoutDate(loading time.Time, terms int) time.Time {
	return loading.AddDate(0, 0, terms)
}

// Apply merges the non-nil fields into load and returns the changed columns.
// A payout date is re-derived when the loading date or the terms change and
// no explicit payout date is given.
func (r *UpdateLoadRequest) Apply(load *models.Load) (map[string]interface{}, error) {
	cols := map[string]interface{}{}

	setString := func(col string, v *string, dst *string, required bool) error {
		if v == nil {
			return nil
		}
		val := strings.TrimSpace(*v)
		if required && val == "" {
			return fmt.Errorf("%s cannot be empty", col)
		}
		*dst = val
		cols[col] = val
		return nil
	}
	setFloat := func(col string, v *float64, dst *float64) error {
		if v == nil {
			return nil
		}
		if *v < 0 {
			return fmt.Errorf("%s cannot be negative", col)
		}
		*dst = *v
		cols[col] = *v
		return nil
	}

	if err := errors.Join(
		setString("pickup_location", r.PickupLocation, &load.PickupLocation, true),
		setString("dropoff_location", r.DropoffLocation, &load.DropoffLocation, true),
		setString("client_name", r.ClientName, &load.ClientName, true),
		setString("loading_time", r.LoadingTime, &load.LoadingTime, true),
		setString("notes", r.Notes, &load.Notes, false),
		setFloat("client_price", r.ClientPrice, &load.ClientPrice),
		setFloat("driver_price", r.DriverPrice, &load.DriverPrice),
		setFloat("load_weight", r.LoadWeight, &load.LoadWeight),
		setFloat("fuel", r.Fuel, &load.Fuel),
		setFloat("tolls", r.Tolls, &load.Tolls),
		setFloat("other_expenses", r.OtherExpenses, &load.OtherExpenses),
	); err != nil {
		return nil, err
	}

	if r.ShippingType != nil {
		st := models.ShippingType(*r.ShippingType)
		if !st.Valid() {
			return nil, fmt.Errorf("invalid shipping type %q", *r.ShippingType)
		}
		load.ShippingType = st
		cols["shipping_type"] = st
	}
	if r.Pallets != nil {
		p := *r.Pallets
		load.Pallets = &p
		cols["pallets"] = p
	}

	rederive := false
	if r.PaymentTerms != nil {
		if !models.ValidPaymentTerms(*r.PaymentTerms) {
			return nil, fmt.Errorf("payment terms must be one of %v", models.PaymentTerms)
		}
		load.PaymentTerms = *r.PaymentTerms
		cols["payment_terms"] = *r.PaymentTerms
		rederive = true
	}
	if r.LoadingDate != nil {
		d, err := ParseDate(*r.LoadingDate)
		if err != nil {
			return nil, err
		}
		load.LoadingDate = d
		cols["loading_date"] = d
		rederive = true
	}

	switch {
	case r.ExpectedPayoutDate != nil:
		d, err := ParseDate(*r.ExpectedPayoutDate)
		if err != nil {
			return nil, err
		}
		load.ExpectedPayoutDate = &d
		cols["expected_payout_date"] = d
	case rederive:
		d := PayoutDate(load.LoadingDate, load.PaymentTerms)
		load.ExpectedPayoutDate = &d
		cols["expected_payout_date"] = d
	}

	return cols, nil
}
