// Package exporter renders holdings report workbooks. The column layout is
// driven by a YAML config so report consumers can reorder or drop columns
// without a code change.
package exporter

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"

	"ward-inventory-api/internal/models"
)

// LayoutConfig represents the YAML report layout configuration
type LayoutConfig struct {
	Version int            `yaml:"version"`
	Sheet   string         `yaml:"sheet"`
	Columns []ColumnConfig `yaml:"columns"`
}

type ColumnConfig struct {
	Header string `yaml:"header"`
	Field  string `yaml:"field"`
}

// ExportOptions defines the configuration for report export operations
type ExportOptions struct {
	LayoutPath string // default "configs/reports/holdings.yaml"
}

// fieldValue extracts a named field from a holdings row. Unknown fields
// render as empty cells rather than failing the whole report.
func fieldValue(row models.HoldingRow, field string) string {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	num := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}

	switch field {
	case "holding_id":
		return strconv.FormatInt(row.HoldingID, 10)
	case "department":
		return row.Department
	case "room":
		return row.Room
	case "asset_type":
		return row.AssetType
	case "asset_name":
		return row.AssetName
	case "unit":
		return str(row.Unit)
	case "serial_number":
		return str(row.SerialNumber)
	case "date_received":
		return row.DateReceived
	case "received_by":
		return row.ReceivedBy
	case "manager_in_charge":
		return row.ManagerInCharge
	case "origin":
		return str(row.Origin)
	case "equipment_status":
		return str(row.EquipmentStatus)
	case "baseline_qty":
		return strconv.Itoa(row.BaselineQty)
	case "qty_on_hand":
		return strconv.Itoa(row.QtyOnHand)
	case "last_count":
		return num(row.LastCount)
	case "last_variance":
		return num(row.LastVariance)
	default:
		return ""
	}
}

// ExportHoldings writes the holdings rows as an Excel workbook
func ExportHoldings(w io.Writer, rows []models.HoldingRow, opts ExportOptions) error {
	if opts.LayoutPath == "" {
		opts.LayoutPath = "configs/reports/holdings.yaml"
	}

	layout, err := loadLayoutConfig(opts.LayoutPath)
	if err != nil {
		return fmt.Errorf("failed to load report layout: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(layout.Sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range layout.Columns {
		header.AddCell().SetString(col.Header)
	}

	for _, row := range rows {
		xr := sheet.AddRow()
		for _, col := range layout.Columns {
			xr.AddCell().SetString(fieldValue(row, col.Field))
		}
	}

	return file.Write(w)
}

// loadLayoutConfig reads the layout YAML; a missing file falls back to the
// built-in default layout.
func loadLayoutConfig(path string) (*LayoutConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultLayout(), nil
		}
		return nil, err
	}

	var layout LayoutConfig
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, err
	}
	if layout.Sheet == "" {
		layout.Sheet = "Holdings"
	}
	if len(layout.Columns) == 0 {
		return defaultLayout(), nil
	}
	return &layout, nil
}

func defaultLayout() *LayoutConfig {
	return &LayoutConfig{
		Version: 1,
		Sheet:   "Holdings",
		Columns: []ColumnConfig{
			{Header: "Department", Field: "department"},
			{Header: "Room", Field: "room"},
			{Header: "Asset Type", Field: "asset_type"},
			{Header: "Asset", Field: "asset_name"},
			{Header: "Unit", Field: "unit"},
			{Header: "Serial Number", Field: "serial_number"},
			{Header: "Date Received", Field: "date_received"},
			{Header: "Received By", Field: "received_by"},
			{Header: "Manager In Charge", Field: "manager_in_charge"},
			{Header: "Origin", Field: "origin"},
			{Header: "Baseline Qty", Field: "baseline_qty"},
			{Header: "Qty On Hand", Field: "qty_on_hand"},
			{Header: "Last Count", Field: "last_count"},
			{Header: "Last Variance", Field: "last_variance"},
		},
	}
}
