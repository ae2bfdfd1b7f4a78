package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/auth"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/store/sqlite"
	"github.com/brainlyapp/brainly-server/internal/validation"
)

func TestAuthService_SignupAndSignin(t *testing.T) {
	env := setupEnv(t, envOptions{})
	ctx := context.Background()

	user, err := env.auth.Signup(ctx, SignupRequest{Username: "alice", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)

	token, signedIn, err := env.auth.Signin(ctx, SigninRequest{Username: "alice", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)

	claims, err := env.auth.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_Signup_UsernameTaken(t *testing.T) {
	env := setupEnv(t, envOptions{})
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, SignupRequest{Username: "alice", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, err = env.auth.Signup(ctx, SignupRequest{Username: "alice", Password: "Other0ne!"})
	requireCode(t, err, domainerrors.CodeAlreadyExists)

	// Case-sensitive usernames.
	_, err = env.auth.Signup(ctx, SignupRequest{Username: "Alice", Password: "Passw0rd!"})
	require.NoError(t, err)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	env := setupEnv(t, envOptions{})

	tests := []SignupRequest{
		{Username: "al", Password: "Passw0rd!"},
		{Username: "alice", Password: "short1!"},
		{Username: "alice", Password: "password1!"},
		{Username: "alice", Password: "Passw0rd!Passw0rd!xyz"},
	}
	for _, req := range tests {
		_, err := env.auth.Signup(context.Background(), req)
		requireCode(t, err, domainerrors.CodeValidation)
	}
}

func TestAuthService_Signin_BadCredentials(t *testing.T) {
	env := setupEnv(t, envOptions{})
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, SignupRequest{Username: "alice", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, _, err = env.auth.Signin(ctx, SigninRequest{Username: "alice", Password: "Wrong0ne!"})
	wrongPassword := requireCode(t, err, domainerrors.CodeInvalidCredentials)

	_, _, err = env.auth.Signin(ctx, SigninRequest{Username: "nobody", Password: "Passw0rd!"})
	unknownUser := requireCode(t, err, domainerrors.CodeInvalidCredentials)

	assert.Equal(t, wrongPassword.Message, unknownUser.Message)

	_, _, err = env.auth.Signin(ctx, SigninRequest{Username: "", Password: ""})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestAuthService_VerifyToken(t *testing.T) {
	env := setupEnv(t, envOptions{})
	ctx := context.Background()

	_, err := env.auth.VerifyToken(ctx, "")
	requireCode(t, err, domainerrors.CodeUnauthorized)

	_, err = env.auth.VerifyToken(ctx, "v4.local.garbage")
	requireCode(t, err, domainerrors.CodeUnauthorized)
}

func TestAuthService_VerifyToken_Expired(t *testing.T) {
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tokens, err := auth.NewTokenService(make([]byte, 32), time.Nanosecond)
	require.NoError(t, err)
	svc := NewAuthService(s, tokens, validation.New(), setupLogger())
	ctx := context.Background()

	_, err = svc.Signup(ctx, SignupRequest{Username: "alice", Password: "Passw0rd!"})
	require.NoError(t, err)
	token, _, err := svc.Signin(ctx, SigninRequest{Username: "alice", Password: "Passw0rd!"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = svc.VerifyToken(ctx, token)
	requireCode(t, err, domainerrors.CodeTokenExpired)
}
