package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	domain "github.com/salonos/backend/internal/domain/analytics"
	"github.com/salonos/backend/internal/domain/shared"
)

// ExportFormat selects the KPI export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// IsValid checks if the format is a supported ExportFormat.
func (f ExportFormat) IsValid() bool {
	return f == ExportFormatCSV || f == ExportFormatXLSX
}

// ExportFile is a rendered KPI export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// kpiRows flattens the KPI set into ordered label/value pairs. Money values
// render at two decimal places.
func kpiRows(k domain.KPISet) [][2]string {
	return [][2]string{
		{"Gross Revenue", k.GrossRevenue.StringFixed(2)},
		{"Net Revenue", k.NetRevenue.StringFixed(2)},
		{"Direct Costs", k.DirectCosts.StringFixed(2)},
		{"Gross Margin", k.GrossMargin.StringFixed(2)},
		{"Total Expenses", k.TotalExpenses.StringFixed(2)},
		{"Net Margin", k.NetMargin.StringFixed(2)},
		{"Average Ticket", k.AverageTicket.StringFixed(2)},
		{"Occupancy Rate %", k.OccupancyRate.StringFixed(2)},
		{"Daily Cash", k.DailyCash.StringFixed(2)},
		{"Pending Settlement", k.PendingSettlement.StringFixed(2)},
		{"Completed Appointments", strconv.Itoa(k.CompletedAppointments)},
		{"Total Appointments", strconv.Itoa(k.TotalAppointments)},
	}
}

// ExportKPIs renders the windowed KPI set as a downloadable file.
func (s *DashboardService) ExportKPIs(ctx context.Context, orgID uuid.UUID, q Query, format ExportFormat) (*ExportFile, error) {
	if !format.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	kpis, err := s.GetKPIs(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordExport(ctx, string(format))

	stamp := domain.NewDate(s.now()).String()
	switch format {
	case ExportFormatXLSX:
		data, err := renderKPIsXLSX(*kpis)
		if err != nil {
			return nil, fmt.Errorf("render xlsx: %w", err)
		}
		return &ExportFile{
			Filename:    "kpis-" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		data, err := renderKPIsCSV(*kpis)
		if err != nil {
			return nil, fmt.Errorf("render csv: %w", err)
		}
		return &ExportFile{
			Filename:    "kpis-" + stamp + ".csv",
			ContentType: "text/csv",
			Data:        data,
		}, nil
	}
}

func renderKPIsCSV(k domain.KPISet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"metric", "value"}); err != nil {
		return nil, err
	}
	for _, row := range kpiRows(k) {
		if err := w.Write([]string{row[0], row[1]}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderKPIsXLSX(k domain.KPISet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "KPIs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Metric", "Value"}); err != nil {
		return nil, err
	}
	for i, row := range kpiRows(k) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{row[0], row[1]}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
