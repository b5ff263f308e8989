package model

// カタログAPIの評価
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// カタログAPIの商品（JSONの形はAPIそのまま）
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}
