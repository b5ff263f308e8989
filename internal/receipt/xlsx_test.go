package receipt_test

import (
	"bytes"
	"testing"
	"time"

	"quickcart/internal/domain/model"
	"quickcart/internal/receipt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func sampleOrder() model.Order {
	return model.Order{
		ID:     "QC00123456",
		Status: model.OrderStatusConfirmed,
		Items: []model.OrderItem{
			{ProductID: 1, Title: "Backpack", UnitPrice: 30, Quantity: 2, LineTotal: 60},
		},
		Subtotal:  60,
		Shipping:  0,
		Tax:       4.8,
		Total:     64.8,
		ShipTo:    model.Address{FullName: "Alice Smith", Address: "1 Main St", City: "Springfield", ZipCode: "12345"},
		CreatedAt: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, receipt.Write(&buf, sampleOrder()))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Receipt", sheet.Name)
	assert.Equal(t, "QC00123456", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Product ID", sheet.Rows[5].Cells[0].Value)
	assert.Equal(t, "Backpack", sheet.Rows[6].Cells[1].Value)

	last := sheet.Rows[len(sheet.Rows)-1]
	assert.Equal(t, "Total", last.Cells[0].Value)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "receipt-QC00123456.xlsx", receipt.Filename(sampleOrder()))
}
