package repository

import (
	"context"
	"errors"

	"quickcart/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 同じemailが既にある
var ErrEmailTaken = errors.New("email already registered")

// 登録ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrEmailTaken）
	Create(ctx context.Context, user *model.User) error
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
