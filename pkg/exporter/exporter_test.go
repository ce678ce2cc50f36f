package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"ward-inventory-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func sampleRows() []models.HoldingRow {
	return []models.HoldingRow{
		{
			HoldingID:       1,
			Department:      "Medical Ward",
			Room:            "Ward A Storage",
			AssetType:       "Bed linens",
			AssetName:       "Bed sheet",
			Unit:            strPtr("piece"),
			DateReceived:    "2026-08-01",
			ReceivedBy:      "jstaff",
			ManagerInCharge: "mmanager",
			Origin:          strPtr("central laundry"),
			BaselineQty:     40,
			QtyOnHand:       38,
			LastCount:       intPtr(38),
			LastVariance:    intPtr(-2),
		},
		{
			HoldingID:       2,
			Department:      "Medical Ward",
			Room:            "Ward A Storage",
			AssetType:       "Infusion equipment",
			AssetName:       "Infusion pump",
			SerialNumber:    strPtr("IP-0001"),
			DateReceived:    "2026-07-15",
			ReceivedBy:      "jstaff",
			ManagerInCharge: "mmanager",
			EquipmentStatus: strPtr("working"),
			BaselineQty:     1,
			QtyOnHand:       1,
		},
	}
}

func TestExportHoldings_DefaultLayout(t *testing.T) {
	var buf bytes.Buffer
	err := ExportHoldings(&buf, sampleRows(), ExportOptions{
		LayoutPath: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Holdings", sheet.Name)

	header, err := sheet.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Department", header.GetCell(0).String())
	assert.Equal(t, "Room", header.GetCell(1).String())

	row1, err := sheet.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "Medical Ward", row1.GetCell(0).String())
	assert.Equal(t, "Bed sheet", row1.GetCell(3).String())

	row2, err := sheet.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "IP-0001", row2.GetCell(5).String())
}

func TestExportHoldings_CustomLayout(t *testing.T) {
	layoutPath := filepath.Join(t.TempDir(), "layout.yaml")
	layout := []byte(`version: 1
sheet: Stock
columns:
  - header: Asset
    field: asset_name
  - header: On Hand
    field: qty_on_hand
  - header: Variance
    field: last_variance
`)
	require.NoError(t, os.WriteFile(layoutPath, layout, 0o644))

	var buf bytes.Buffer
	err := ExportHoldings(&buf, sampleRows(), ExportOptions{LayoutPath: layoutPath})
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := file.Sheets[0]
	assert.Equal(t, "Stock", sheet.Name)

	header, err := sheet.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Asset", header.GetCell(0).String())

	row1, err := sheet.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "Bed sheet", row1.GetCell(0).String())
	assert.Equal(t, "38", row1.GetCell(1).String())
	assert.Equal(t, "-2", row1.GetCell(2).String())

	// Pointer fields render empty when absent
	row2, err := sheet.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "", row2.GetCell(2).String())
}

func TestFieldValue_UnknownFieldIsEmpty(t *testing.T) {
	assert.Equal(t, "", fieldValue(models.HoldingRow{}, "no_such_field"))
}
