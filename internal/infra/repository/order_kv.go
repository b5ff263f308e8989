package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"quickcart/internal/domain/model"
	domainrepo "quickcart/internal/repository"
	"quickcart/internal/kvstore"
)

// 注文履歴を共有名前空間の "orders:<email>" に新しい順で持つ
type OrderKVRepository struct {
	store kvstore.Store
	log   *slog.Logger
}

// DI
func NewOrderKVRepository(store kvstore.Store, log *slog.Logger) *OrderKVRepository {
	return &OrderKVRepository{store: kvstore.Namespaced(store, SharedNamespace), log: log}
}

// emailの大文字小文字は区別しない
func ordersKey(owner string) string {
	return OrdersKey + ":" + strings.ToLower(strings.TrimSpace(owner))
}

func (r *OrderKVRepository) List(ctx context.Context, owner string) ([]model.Order, error) {
	if strings.TrimSpace(owner) == "" {
		return []model.Order{}, nil
	}

	raw, err := r.store.Get(ctx, ordersKey(owner))
	if errors.Is(err, kvstore.ErrNotFound) {
		return []model.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		r.log.WarnContext(ctx, "order history unparseable, treating as empty", "owner", owner, "err", err)
		return []model.Order{}, nil
	}
	return orders, nil
}

func (r *OrderKVRepository) Save(ctx context.Context, owner string, order model.Order) error {
	if strings.TrimSpace(owner) == "" {
		return errors.New("save orders: owner is required")
	}

	orders, err := r.List(ctx, owner)
	if err != nil {
		return err
	}

	orders = append([]model.Order{order}, orders...)

	b, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, ordersKey(owner), string(b)); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

func (r *OrderKVRepository) FindByID(ctx context.Context, owner string, orderID string) (model.Order, error) {
	orders, err := r.List(ctx, owner)
	if err != nil {
		return model.Order{}, err
	}

	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, domainrepo.ErrNotFound
}
