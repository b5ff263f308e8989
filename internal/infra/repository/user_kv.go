package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quickcart/internal/domain/model"
	domainrepo "quickcart/internal/repository"
	"quickcart/internal/kvstore"
)

// registeredUsers キーにユーザー一覧をJSONで持つ
type userKVRepository struct {
	store kvstore.Store
	log   *slog.Logger
	// 一覧の読み書きを直列にする
	mu sync.Mutex
}

// DI
func NewUserKVRepository(store kvstore.Store, log *slog.Logger) domainrepo.UserRepository {
	return &userKVRepository{
		store: kvstore.Namespaced(store, SharedNamespace),
		log:   log,
	}
}

func (r *userKVRepository) load(ctx context.Context) ([]model.User, error) {
	raw, err := r.store.Get(ctx, UsersKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []model.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		r.log.WarnContext(ctx, "user list unparseable, treating as empty", "err", err)
		return []model.User{}, nil
	}
	return users, nil
}

func (r *userKVRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}

	for _, u := range users {
		if strings.EqualFold(u.Email, user.Email) {
			return domainrepo.ErrEmailTaken
		}
	}

	user.ID = int64(len(users) + 1)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	users = append(users, *user)

	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, UsersKey, string(b))
}

func (r *userKVRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, domainrepo.ErrUserNotFound
}
