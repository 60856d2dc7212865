package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-io/helpdesk-service/internal/auth"
	"github.com/helpdesk-io/helpdesk-service/internal/config"
	"github.com/helpdesk-io/helpdesk-service/internal/domain"
)

type authFixture struct {
	svc    *AuthService
	users  *fakeUserRepo
	resets *fakeResetRepo
	tokens *auth.TokenManager
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  newFakeUserRepo(),
		resets: newFakeResetRepo(),
		tokens: auth.NewTokenManager("test-secret", 60),
	}
	f.svc = NewAuthService(AuthDependencies{
		UserRepo:  f.users,
		ResetRepo: f.resets,
		Tokens:    f.tokens,
		Config: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
		},
		Logger: zap.NewNop(),
	})
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	result, err := f.svc.Register(ctx, RegisterInput{
		Name:     "Dana",
		Email:    "Dana@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, domain.RoleUser, result.User.Role, "self sign-up is always an end user")
	require.Equal(t, "dana@example.com", result.User.Email, "email is normalized")

	// duplicate email
	_, err = f.svc.Register(ctx, RegisterInput{Name: "Dana2", Email: "dana@example.com", Password: "correct horse"})
	requireCode(t, err, "CONFLICT")

	login, err := f.svc.Login(ctx, "DANA@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, result.User.ID, login.User.ID)

	claims, err := f.tokens.ParseToken(login.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.UserID)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, badPassword := f.svc.Login(ctx, "dana@example.com", "wrong")
	_, badEmail := f.svc.Login(ctx, "nobody@example.com", "wrong")
	requireCode(t, badPassword, "UNAUTHORIZED")
	requireCode(t, badEmail, "UNAUTHORIZED")
	require.Equal(t, badPassword.Error(), badEmail.Error())
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "", Email: "x@example.com", Password: "longenough"})
	requireCode(t, err, "VALIDATION_FAILED")
	_, err = f.svc.Register(ctx, RegisterInput{Name: "X", Email: "not-an-email", Password: "longenough"})
	requireCode(t, err, "VALIDATION_FAILED")
	_, err = f.svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "short"})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	result, err := f.svc.Register(ctx, RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, result.User.ID, "wrong", "new password!")
	requireCode(t, err, "UNAUTHORIZED")

	require.NoError(t, f.svc.ChangePassword(ctx, result.User.ID, "correct horse", "new password!"))

	_, err = f.svc.Login(ctx, "dana@example.com", "correct horse")
	requireCode(t, err, "UNAUTHORIZED")
	_, err = f.svc.Login(ctx, "dana@example.com", "new password!")
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	result, err := f.svc.Register(ctx, RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// unknown email is a silent no-op
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
	require.Empty(t, f.resets.tokens)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "dana@example.com"))
	require.Len(t, f.resets.tokens, 1)

	var tokenStr string
	for _, token := range f.resets.tokens {
		tokenStr = token.Token
		require.Equal(t, result.User.ID, token.UserID)
	}

	err = f.svc.ConfirmPasswordReset(ctx, "bogus", "fresh password")
	requireCode(t, err, "UNAUTHORIZED")

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, tokenStr, "fresh password"))

	// single use
	err = f.svc.ConfirmPasswordReset(ctx, tokenStr, "another password")
	requireCode(t, err, "UNAUTHORIZED")

	_, err = f.svc.Login(ctx, "dana@example.com", "fresh password")
	require.NoError(t, err)
}

func TestPasswordResetExpiry(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "dana@example.com"))

	for _, token := range f.resets.tokens {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}
	for _, token := range f.resets.tokens {
		err = f.svc.ConfirmPasswordReset(ctx, token.Token, "fresh password")
	}
	requireCode(t, err, "UNAUTHORIZED")
}
