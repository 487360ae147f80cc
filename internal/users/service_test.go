package users

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	pkgauth "github.com/boutique2v/commerce-backend/pkg/auth"
	"github.com/boutique2v/commerce-backend/pkg/config"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

type stubStore struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
}

func newStubStore() *stubStore {
	return &stubStore{
		byID:    map[uuid.UUID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (s *stubStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := s.byEmail[user.Email]; ok {
		return nil, errDuplicateEmail{}
	}
	user.ID = uuid.New()
	clone := *user
	s.byID[user.ID] = &clone
	s.byEmail[user.Email] = &clone
	return user, nil
}

type errDuplicateEmail struct{}

func (errDuplicateEmail) Error() string {
	return "UNIQUE constraint failed: users.email"
}

func (s *stubStore) Save(_ context.Context, user *models.User) (*models.User, error) {
	clone := *user
	s.byID[user.ID] = &clone
	s.byEmail[user.Email] = &clone
	return user, nil
}

func (s *stubStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *stubStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *stubStore) List(_ context.Context, _ ListFilter) ([]models.User, int64, error) {
	out := make([]models.User, 0, len(s.byID))
	for _, user := range s.byID {
		out = append(out, *user)
	}
	return out, int64(len(out)), nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-which-is-long-enough",
		Issuer:            "boutique2v",
		ExpirationMinutes: 60,
	}
}

func newTestService(t *testing.T, store *stubStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "users-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Store:     store,
		JWTConfig: testJWTConfig(),
		PasswordCfg: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Logger: logg,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.COM",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Email != "ada@example.com" {
		t.Fatalf("email = %q, want lowercased", result.User.Email)
	}
	if result.User.Role != enums.RoleCustomer {
		t.Fatalf("role = %s, want customer", result.User.Role)
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != result.User.ID || claims.Role != enums.RoleCustomer {
		t.Fatalf("claims = %+v", claims)
	}

	// stored hash never equals the raw password
	stored := store.byEmail["ada@example.com"]
	if stored.PasswordHash == "correct horse" || !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("password hash = %q", stored.PasswordHash)
	}

	login, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("login returned a different account")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newStubStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"wrong password", LoginInput{Email: "ada@example.com", Password: "wrong horse"}},
		{"unknown email", LoginInput{Email: "nobody@example.com", Password: "correct horse"}},
		{"malformed email", LoginInput{Email: "not-an-email", Password: "correct horse"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.input)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("got %v, want unauthorized", err)
			}
			if coded.Message() != invalidCredentialsMessage {
				t.Fatalf("message = %q, must not leak which part failed", coded.Message())
			}
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t, newStubStore())
	ctx := context.Background()

	input := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, input)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newStubStore())
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"empty name", RegisterInput{Email: "a@b.com", Password: "long enough"}},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "long enough"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t, newStubStore())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = svc.ChangePassword(ctx, result.User.ID, ChangePasswordInput{
		CurrentPassword: "wrong horse",
		NewPassword:     "battery staple",
	})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("wrong current password: got %v", err)
	}

	err = svc.ChangePassword(ctx, result.User.ID, ChangePasswordInput{
		CurrentPassword: "correct horse",
		NewPassword:     "battery staple",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "battery staple"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"}); err == nil {
		t.Fatal("old password still accepted")
	}
}

func TestUpdateProfilePartialFields(t *testing.T) {
	svc := newTestService(t, newStubStore())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	phone := "+44 20 7946 0958"
	updated, err := svc.UpdateProfile(ctx, result.User.ID, UpdateProfileInput{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ada" {
		t.Fatalf("name changed to %q", updated.Name)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Fatalf("phone = %v", updated.Phone)
	}

	empty := "  "
	_, err = svc.UpdateProfile(ctx, result.User.ID, UpdateProfileInput{Name: &empty})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("blank name: got %v", err)
	}
}
