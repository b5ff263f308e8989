package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"quickcart/internal/domain/model"
	infraRepo "quickcart/internal/infra/repository"
	"quickcart/internal/kvstore"
	"quickcart/internal/repository"
	"quickcart/internal/usecase"
	auth "quickcart/internal/usecase/auth_usecase"
	"quickcart/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *kvstore.MemoryStore
	sessions *infraRepo.SessionKVRepository
	users    repository.UserRepository
	register *auth.RegisterUserUsecase
	login    *auth.LoginUsecase
	session  *auth.SessionUsecase
}

func newFixture(users repository.UserRepository) fixture {
	store := kvstore.NewMemoryStore()
	log := discardLogger()
	sessions := infraRepo.NewSessionKVRepository(store)
	if users == nil {
		users = infraRepo.NewUserKVRepository(store, log)
	}
	v := validator.NewAuthValidator()

	return fixture{
		store:    store,
		sessions: sessions,
		users:    users,
		register: auth.NewRegisterUserUsecase(users, sessions, v, auth.NewBcryptPasswordHasher(bcrypt.MinCost), fixedClock{time.Unix(1700000000, 0)}, log),
		login:    auth.NewLoginUsecase(users, sessions, v, auth.NewBcryptPasswordVerifier(), log),
		session:  auth.NewSessionUsecase(sessions, infraRepo.NewCartKVRepository(store, log), nil, log),
	}
}

func signup() auth.SignupInput {
	return auth.SignupInput{Name: "Alice", Email: "alice@example.com", Password: "secret1", ConfirmPassword: "secret1"}
}

func TestRegister_LogsSessionIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	out, err := f.register.Execute(ctx, "s1", signup())
	require.NoError(t, err)
	assert.True(t, out.LoggedIn)
	assert.Equal(t, "Alice", out.Username)

	s, err := f.sessions.Find(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.LoggedIn)
	assert.Equal(t, "Alice", s.Username)

	// 平文は保存しない
	u, err := f.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
}

func TestRegister_ValidationFields(t *testing.T) {
	f := newFixture(nil)

	_, err := f.register.Execute(context.Background(), "s1", auth.SignupInput{Email: "x"})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Name is required", he.Fields["name"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	_, err := f.register.Execute(ctx, "s1", signup())
	require.NoError(t, err)

	in := signup()
	in.Email = "ALICE@example.com"
	_, err = f.register.Execute(ctx, "s2", in)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "Email already registered", he.Message)

	s, err := f.sessions.Find(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)
}

func TestRegister_RepositoryRace(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, repository.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrEmailTaken)

	f := newFixture(users)
	_, err := f.register.Execute(context.Background(), "s1", signup())

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	users.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	_, err := f.register.Execute(ctx, "s1", signup())
	require.NoError(t, err)

	out, err := f.login.Execute(ctx, "s2", auth.LoginInput{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", out.Username)
	assert.Equal(t, "Login successful!", out.Message)

	s, err := f.sessions.Find(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, s.LoggedIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	_, err := f.register.Execute(ctx, "s1", signup())
	require.NoError(t, err)

	for _, in := range []auth.LoginInput{
		{Email: "alice@example.com", Password: "wrong-pass"},
		{Email: "bob@example.com", Password: "secret1"},
	} {
		_, err := f.login.Execute(ctx, "s2", in)
		he, ok := usecase.AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Status)
		assert.Equal(t, "Invalid email or password", he.Message)
	}
}

func TestLogout_ClearsSessionAndCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	_, err := f.register.Execute(ctx, "s1", signup())
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, "session:s1:cart", `[{"id":1,"price":10,"quantity":1}]`))

	out, err := f.session.Logout(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, out.LoggedIn)
	assert.Equal(t, "Guest", out.Username)

	_, err = f.store.Get(ctx, "session:s1:cart")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	st, err := f.session.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.LoggedIn)
	assert.Equal(t, "Guest", st.Username)
}
