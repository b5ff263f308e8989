package receipt

import (
	"fmt"
	"io"

	"quickcart/internal/domain/model"

	"github.com/tealeg/xlsx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func Filename(o model.Order) string {
	return fmt.Sprintf("receipt-%s.xlsx", o.ID)
}

// Build は注文1件分の領収書シートを作る。
func Build(o model.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Receipt")
	if err != nil {
		return nil, err
	}

	addRow(sheet, "Order", o.ID)
	addRow(sheet, "Date", o.CreatedAt.Format("2006-01-02 15:04:05"))
	addRow(sheet, "Status", string(o.Status))
	addRow(sheet, "Ship To", o.ShipTo.FullName)
	addRow(sheet, "Address", fmt.Sprintf("%s, %s %s", o.ShipTo.Address, o.ShipTo.City, o.ShipTo.ZipCode))

	// Header row
	headers := []string{"Product ID", "Title", "Unit Price", "Quantity", "Line Total"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	// Data rows
	for _, it := range o.Items {
		row := sheet.AddRow()
		row.AddCell().SetValue(it.ProductID)
		row.AddCell().SetValue(it.Title)
		row.AddCell().SetValue(it.UnitPrice)
		row.AddCell().SetValue(it.Quantity)
		row.AddCell().SetValue(it.LineTotal)
	}

	addRow(sheet, "Subtotal", o.Subtotal)
	addRow(sheet, "Shipping", o.Shipping)
	addRow(sheet, "Tax", o.Tax)
	addRow(sheet, "Total", o.Total)

	return file, nil
}

func Write(w io.Writer, o model.Order) error {
	file, err := Build(o)
	if err != nil {
		return err
	}
	return file.Write(w)
}

func addRow(sheet *xlsx.Sheet, label string, value interface{}) {
	row := sheet.AddRow()
	row.AddCell().SetValue(label)
	row.AddCell().SetValue(value)
}
