package authsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemory(t *testing.T, opts ...MemoryOption) *Memory {
	t.Helper()
	m := NewMemory(append([]MemoryOption{WithSecret("test-secret")}, opts...)...)
	require.NoError(t, m.AddAccount(AccountSeed{
		Email:       "ana@example.com",
		Password:    "hunter2hunter2",
		Name:        "Ana",
		Roles:       []Role{{ID: "r1", Name: "Admin"}},
		Permissions: []string{"users.manage"},
	}))
	return m
}

func TestLoginIssuesFullCredentialBundle(t *testing.T) {
	m := seedMemory(t)
	sess, err := m.Login(context.Background(), "Ana@Example.com", "hunter2hunter2")
	require.NoError(t, err)

	creds := sess.Credentials
	assert.Equal(t, "Bearer", creds.TokenType)
	assert.Equal(t, "900", creds.ExpiresIn)
	assert.NotEmpty(t, creds.AccessToken)
	assert.NotEmpty(t, creds.RefreshToken)
	assert.False(t, creds.Empty())

	assert.Equal(t, "Ana", sess.User.Name)
	assert.Equal(t, []string{"users.manage"}, sess.Permissions)
	require.Len(t, sess.Roles, 1)
}

func TestLoginWrongPasswordCarriesMessage(t *testing.T) {
	m := seedMemory(t)
	_, err := m.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", Message(err, "fallback"))
}

func TestLoginUnknownEmail(t *testing.T) {
	m := seedMemory(t)
	_, err := m.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()
	sess, err := m.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	next, err := m.RefreshToken(ctx, sess.Credentials.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Credentials.RefreshToken, next.Credentials.RefreshToken)

	// The presented token is spent: replaying it must fail.
	_, err = m.RefreshToken(ctx, sess.Credentials.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterValidation(t *testing.T) {
	m := NewMemory(WithSecret("test-secret"))
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Name: "X", Password: "longenough", PasswordConfirmation: "longenough"}},
		{"missing name", RegisterInput{Email: "x@example.com", Password: "longenough", PasswordConfirmation: "longenough"}},
		{"short password", RegisterInput{Name: "X", Email: "x@example.com", Password: "short", PasswordConfirmation: "short"}},
		{"confirmation mismatch", RegisterInput{Name: "X", Email: "x@example.com", Password: "longenough", PasswordConfirmation: "different1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Register(ctx, tc.input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	m := seedMemory(t)
	_, err := m.Register(context.Background(), RegisterInput{
		Name: "Clone", Email: "ana@example.com",
		Password: "longenough", PasswordConfirmation: "longenough",
	})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterAndVerifyEmailFlow(t *testing.T) {
	m := NewMemory(WithSecret("test-secret"))
	ctx := context.Background()

	sess, err := m.Register(ctx, RegisterInput{
		Name: "Ben", Email: "ben@example.com",
		Password: "longenough", PasswordConfirmation: "longenough",
	})
	require.NoError(t, err)
	assert.False(t, sess.Credentials.Empty())

	code := m.VerificationCode("ben@example.com")
	require.NotEmpty(t, code)
	require.Error(t, m.VerifyEmail(ctx, "ben@example.com", "000000x"))
	require.NoError(t, m.VerifyEmail(ctx, "ben@example.com", code))
	assert.Empty(t, m.VerificationCode("ben@example.com"))
}

func TestResendVerificationCodeRateLimited(t *testing.T) {
	m := seedMemory(t, WithResendEvery(time.Hour))
	ctx := context.Background()

	msg, err := m.ResendVerificationCode(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	_, err = m.ResendVerificationCode(ctx, "ana@example.com")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestResendVerificationCodeUnthrottled(t *testing.T) {
	m := seedMemory(t, WithResendEvery(0))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := m.ResendVerificationCode(ctx, "ana@example.com")
		require.NoError(t, err)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()

	require.NoError(t, m.RequestResetPassword(ctx, "ana@example.com"))
	token := m.ResetTokenFor("ana@example.com")
	require.NotEmpty(t, token)

	require.NoError(t, m.ResetPassword(ctx, ResetPasswordInput{
		Email: "ana@example.com", Token: token,
		Password: "newpassword1", PasswordConfirmation: "newpassword1",
	}))

	_, err := m.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Login(ctx, "ana@example.com", "newpassword1")
	require.NoError(t, err)
}

func TestRequestResetPasswordUnknownEmailSucceeds(t *testing.T) {
	m := seedMemory(t)
	require.NoError(t, m.RequestResetPassword(context.Background(), "ghost@example.com"))
	assert.Empty(t, m.ResetTokenFor("ghost@example.com"))
}

func TestMeReturnsProfileWithoutMutation(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()
	sess, err := m.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	profile, err := m.Me(ctx, sess.Credentials.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, profile.ID)

	_, err = m.Me(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()
	sess, err := m.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, sess.Credentials.AccessToken))
	_, err = m.RefreshToken(ctx, sess.Credentials.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	m := seedMemory(t, WithClock(func() time.Time { return current }), WithAccessTTL(time.Minute))

	ctx := context.Background()
	sess, err := m.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	current = base.Add(2 * time.Minute)
	_, err = m.Me(ctx, sess.Credentials.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}
