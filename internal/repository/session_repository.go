package repository

import (
	"context"

	"quickcart/internal/domain/model"
)

// ログインフラグとユーザー名
type SessionRepository interface {
	Find(ctx context.Context, sessionID string) (model.Session, error)
	// email は注文履歴の持ち主になる
	MarkLoggedIn(ctx context.Context, sessionID string, username string, email string) error
	// ログイン情報を消す（カートは消さない）
	Forget(ctx context.Context, sessionID string) error
}
