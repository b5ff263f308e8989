package repository

import (
	"context"
	"errors"
	"fmt"

	"quickcart/internal/domain/model"
	"quickcart/internal/kvstore"
)

// isLoggedIn / username の2キーで持つ
type SessionKVRepository struct {
	store kvstore.Store
}

// DI
func NewSessionKVRepository(store kvstore.Store) *SessionKVRepository {
	return &SessionKVRepository{store: store}
}

func (r *SessionKVRepository) Find(ctx context.Context, sessionID string) (model.Session, error) {
	ns := kvstore.ForSession(r.store, sessionID)
	s := model.Session{ID: sessionID}

	flag, err := ns.Get(ctx, LoggedInKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return s, fmt.Errorf("load login flag: %w", err)
	}
	s.LoggedIn = flag == "true"

	name, err := ns.Get(ctx, UsernameKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return s, fmt.Errorf("load username: %w", err)
	}
	s.Username = name

	email, err := ns.Get(ctx, EmailKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return s, fmt.Errorf("load email: %w", err)
	}
	s.Email = email

	return s, nil
}

func (r *SessionKVRepository) MarkLoggedIn(ctx context.Context, sessionID string, username string, email string) error {
	ns := kvstore.ForSession(r.store, sessionID)

	if err := ns.Set(ctx, LoggedInKey, "true"); err != nil {
		return fmt.Errorf("save login flag: %w", err)
	}
	if err := ns.Set(ctx, UsernameKey, username); err != nil {
		return fmt.Errorf("save username: %w", err)
	}
	if err := ns.Set(ctx, EmailKey, email); err != nil {
		return fmt.Errorf("save email: %w", err)
	}
	return nil
}

func (r *SessionKVRepository) Forget(ctx context.Context, sessionID string) error {
	ns := kvstore.ForSession(r.store, sessionID)

	for _, key := range []string{LoggedInKey, UsernameKey, EmailKey} {
		if err := ns.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
