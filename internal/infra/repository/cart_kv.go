package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"quickcart/internal/domain/model"
	"quickcart/internal/kvstore"
)

// カートをKVストアの "cart" キーにJSON配列で保存する
type CartKVRepository struct {
	store kvstore.Store
	log   *slog.Logger
}

// DI
func NewCartKVRepository(store kvstore.Store, log *slog.Logger) *CartKVRepository {
	return &CartKVRepository{store: store, log: log}
}

func (r *CartKVRepository) Get(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	raw, err := kvstore.ForSession(r.store, sessionID).Get(ctx, CartKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		//壊れた値は空カート扱い
		r.log.WarnContext(ctx, "cart value unparseable, treating as empty", "session_id", sessionID, "err", err)
		return []model.CartItem{}, nil
	}

	return sanitize(items), nil
}

func (r *CartKVRepository) Set(ctx context.Context, sessionID string, items []model.CartItem) error {
	b, err := json.Marshal(sanitize(items))
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := kvstore.ForSession(r.store, sessionID).Set(ctx, CartKey, string(b)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// キーごと消す
func (r *CartKVRepository) Clear(ctx context.Context, sessionID string) error {
	if err := kvstore.ForSession(r.store, sessionID).Remove(ctx, CartKey); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// 数量0以下と重複IDは保存しない（先に出た方を残す）
func sanitize(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, 0, len(items))
	seen := make(map[int64]struct{}, len(items))

	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
