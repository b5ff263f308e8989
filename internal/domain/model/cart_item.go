package model

const (
	MinQuantity = 1
	MaxQuantity = 10
)

// カートの明細
// 追加時点の商品スナップショットを持つ（カタログから再取得しない）。
// JSONは {...product, "quantity": n} のフラットな形。
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

func (it CartItem) ProductID() int64 {
	return it.ID
}

// 数量を MinQuantity..MaxQuantity に収める
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
