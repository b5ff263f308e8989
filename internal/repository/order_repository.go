package repository

import (
	"context"
	"errors"

	"quickcart/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// ユーザーごとの注文履歴（owner はログイン中ユーザーのemail）
// セッションをまたいでも同じユーザーなら同じ履歴になる。
type OrderRepository interface {
	Save(ctx context.Context, owner string, order model.Order) error
	// 新しい順
	List(ctx context.Context, owner string) ([]model.Order, error)
	FindByID(ctx context.Context, owner string, orderID string) (model.Order, error)
}
