package model

import "time"

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

// 配送先・請求先
type Address struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
}

// 注文明細（注文確定時点のスナップショット）
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type Order struct {
	ID        string      `json:"id"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Shipping  float64     `json:"shipping"`
	Tax       float64     `json:"tax"`
	Total     float64     `json:"total"`
	ShipTo    Address     `json:"ship_to"`
	BillTo    Address     `json:"bill_to"`
	CreatedAt time.Time   `json:"created_at"`
}
