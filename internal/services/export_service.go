package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const exportSheet = "Loads"

type ExportFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

type exportColumn struct {
	header string
	width  float64
	value  func(l *models.Load) interface{}
}

func orNA(s string) interface{} {
	if s == "" {
		return "N/A"
	}
	return s
}

func dateOrNA(t *time.Time) interface{} {
	if t == nil {
		return "N/A"
	}
	return t.Format("2006-01-02")
}

var exportColumns = []exportColumn{
	{"Load Number", 15, func(l *models.Load) interface{} { return l.LoadNumber }},
	{"Pickup", 25, func(l *models.Load) interface{} { return l.PickupLocation }},
	{"Dropoff", 25, func(l *models.Load) interface{} { return l.DropoffLocation }},
	{"Client", 20, func(l *models.Load) interface{} { return l.ClientName }},
	{"Client Price", 14, func(l *models.Load) interface{} { return l.ClientPrice }},
	{"Driver Price", 14, func(l *models.Load) interface{} { return l.DriverPrice }},
	{"Shipping Type", 14, func(l *models.Load) interface{} { return string(l.ShippingType) }},
	{"Loading Date", 14, func(l *models.Load) interface{} { return l.LoadingDate.Format("2006-01-02") }},
	{"Payment Terms (days)", 20, func(l *models.Load) interface{} { return l.PaymentTerms }},
	{"Expected Payout", 16, func(l *models.Load) interface{} { return dateOrNA(l.ExpectedPayoutDate) }},
	{"Status", 12, func(l *models.Load) interface{} { return string(l.Status) }},
	{"Driver Name", 20, func(l *models.Load) interface{} {
		if l.AssignedDriver == nil {
			return "Not Assigned"
		}
		return l.AssignedDriver.Name
	}},
	{"Driver Email", 25, func(l *models.Load) interface{} {
		if l.AssignedDriver == nil {
			return "N/A"
		}
		return orNA(l.AssignedDriver.Email)
	}},
	{"Driver Phone", 18, func(l *models.Load) interface{} {
		if l.AssignedDriver == nil {
			return "N/A"
		}
		return orNA(l.AssignedDriver.Phone)
	}},
	{"Fuel", 10, func(l *models.Load) interface{} { return l.Fuel }},
	{"Tolls", 10, func(l *models.Load) interface{} { return l.Tolls }},
	{"Other Expenses", 14, func(l *models.Load) interface{} { return l.OtherExpenses }},
	{"Completed At", 16, func(l *models.Load) interface{} { return dateOrNA(l.CompletedAt) }},
	{"Created At", 16, func(l *models.Load) interface{} { return l.CreatedAt.Format("2006-01-02") }},
}

// Loads returns the manager's loads as an xlsx workbook, newest first.
func (s *ExportService) Loads(managerID uuid.UUID, f ExportFilter) ([]byte, int, error) {
	q := s.db.Preload("AssignedDriver").Where("created_by = ?", managerID)
	if f.Status != "" {
		if !models.LoadStatus(f.Status).Valid() {
			return nil, 0, validationError("Invalid status filter")
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}

	var loads []models.Load
	if err := q.Order("created_at DESC").Find(&loads).Error; err != nil {
		return nil, 0, err
	}

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, 0, err
	}

	header, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
	})
	if err != nil {
		return nil, 0, err
	}

	for i, col := range exportColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := book.SetColWidth(exportSheet, name, name, col.width); err != nil {
			return nil, 0, err
		}
		if err := book.SetCellValue(exportSheet, name+"1", col.header); err != nil {
			return nil, 0, err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(exportColumns))
	if err := book.SetCellStyle(exportSheet, "A1", last+"1", header); err != nil {
		return nil, 0, err
	}

	for r := range loads {
		row := make([]interface{}, len(exportColumns))
		for i, col := range exportColumns {
			row[i] = col.value(&loads[r])
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := book.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, 0, err
		}
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), len(loads), nil
}
