package repository

import (
	"context"

	"quickcart/internal/domain/model"
)

// セッションのカートを丸ごと読み書きする約束
// 保存値が壊れていたら空カートを返す。
type CartStore interface {
	Get(ctx context.Context, sessionID string) ([]model.CartItem, error)
	Set(ctx context.Context, sessionID string, items []model.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}
