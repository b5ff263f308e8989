package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quickcart/internal/domain/model"
	"quickcart/internal/repository"
	"quickcart/internal/usecase"

	"golang.org/x/crypto/bcrypt"
)

const msgEmailTaken = "Email already registered"

// 会員登録の入力
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ログイン状態（/auth/status などで返す）
type StatusOutput struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateSignup(in SignupInput) map[string]string
	ValidateLogin(in LoginInput) map[string]string
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。登録できたらそのままログイン状態にする。
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	sessions  repository.SessionRepository
	validator AuthValidator
	hasher    PasswordHasher
	clock     Clock
	log       *slog.Logger
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	sessions repository.SessionRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	clock Clock,
	log *slog.Logger,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		sessions:  sessions,
		validator: validator,
		hasher:    hasher,
		clock:     clock,
		log:       log,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, sessionID string, in SignupInput) (StatusOutput, error) {
	var out StatusOutput

	if fields := u.validator.ValidateSignup(in); len(fields) > 0 {
		return out, usecase.NewFieldError("invalid input", fields)
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return out, emailTaken()
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		u.log.ErrorContext(ctx, "find user failed", "err", err)
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		CreatedAt:    u.clock.Now(),
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return out, emailTaken()
		}
		u.log.ErrorContext(ctx, "create user failed", "err", err)
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}

	if err := u.sessions.MarkLoggedIn(ctx, sessionID, user.Name, user.Email); err != nil {
		u.log.ErrorContext(ctx, "mark logged in failed", "session_id", sessionID, "err", err)
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}

	u.log.InfoContext(ctx, "user registered", "user_id", user.ID, "session_id", sessionID)

	out.LoggedIn = true
	out.Username = user.Name
	out.Message = "Account created successfully!"
	return out, nil
}

func emailTaken() error {
	return &usecase.HTTPError{
		Status:  http.StatusConflict,
		Message: msgEmailTaken,
		Fields:  map[string]string{"email": msgEmailTaken},
	}
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
