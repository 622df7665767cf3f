package authsvc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"adminkit.org/internal/ids"
)

const (
	defaultIssuer      = "adminkit"
	defaultAccessTTL   = 15 * time.Minute
	defaultRefreshTTL  = 24 * time.Hour * 14
	defaultResendEvery = time.Minute
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type account struct {
	profile      Profile
	passwordHash string
	roles        []Role
	permissions  []string
	verified     bool
	verifyCode   string
}

type refreshRecord struct {
	email     string
	tokenHash string
	expiresAt time.Time
	revoked   bool
}

// Memory implements Service in-process: bcrypt password hashes, HS256 access
// tokens, rotating refresh tokens, verification codes and reset tokens.
type Memory struct {
	now         func() time.Time
	secret      []byte
	issuer      string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	resendEvery time.Duration

	mu          sync.Mutex
	accounts    map[string]*account       // keyed by lower-cased email
	refresh     map[string]*refreshRecord // keyed by token id
	resetTokens map[string]string         // token -> email
	limiters    map[string]*rate.Limiter  // resend throttling per email
}

// MemoryOption configures a Memory service.
type MemoryOption func(*Memory)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.now = fn
		}
	}
}

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) MemoryOption {
	return func(m *Memory) {
		if secret != "" {
			m.secret = []byte(secret)
		}
	}
}

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) MemoryOption {
	return func(m *Memory) {
		if issuer != "" {
			m.issuer = issuer
		}
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.accessTTL = ttl
		}
	}
}

// WithResendEvery configures the minimum gap between verification-code
// resends per email. Zero disables throttling.
func WithResendEvery(d time.Duration) MemoryOption {
	return func(m *Memory) { m.resendEvery = d }
}

// NewMemory creates an empty in-memory authentication backend.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now:         time.Now,
		issuer:      defaultIssuer,
		accessTTL:   defaultAccessTTL,
		refreshTTL:  defaultRefreshTTL,
		resendEvery: defaultResendEvery,
		accounts:    make(map[string]*account),
		refresh:     make(map[string]*refreshRecord),
		resetTokens: make(map[string]string),
		limiters:    make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("authsvc: generate secret: %v", err))
		}
		m.secret = buf
	}
	return m
}

// AccountSeed provisions an account directly, bypassing registration.
type AccountSeed struct {
	Email       string
	Password    string
	Name        string
	Phone       string
	Roles       []Role
	Permissions []string
}

// AddAccount seeds a verified account.
func (m *Memory) AddAccount(seed AccountSeed) error {
	email := strings.TrimSpace(strings.ToLower(seed.Email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[email]; ok {
		return ErrAlreadyExists
	}
	m.accounts[email] = &account{
		profile: Profile{
			ID:        ids.Record(),
			Email:     email,
			Name:      seed.Name,
			Phone:     seed.Phone,
			Status:    "active",
			CreatedAt: m.now().UTC(),
		},
		passwordHash: string(hash),
		roles:        append([]Role{}, seed.Roles...),
		permissions:  append([]string{}, seed.Permissions...),
		verified:     true,
	}
	return nil
}

func (m *Memory) Login(ctx context.Context, email, password string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok || password == "" {
		return Session{}, &Error{Message: "Invalid credentials", Err: ErrInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(password)); err != nil {
		return Session{}, &Error{Message: "Invalid credentials", Err: ErrInvalidCredentials}
	}
	if acc.profile.Status != "active" {
		return Session{}, &Error{Message: "Account is disabled", Err: ErrInvalidCredentials}
	}
	return m.mintLocked(acc)
}

func (m *Memory) RefreshToken(ctx context.Context, refreshToken string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	tokenID, secret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return Session{}, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.refresh[tokenID]
	if !ok || rec.revoked || m.now().After(rec.expiresAt) {
		return Session{}, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	if hashSecret(secret) != rec.tokenHash {
		rec.revoked = true
		return Session{}, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	acc, ok := m.accounts[rec.email]
	if !ok {
		return Session{}, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	// Rotate: the presented token is spent either way.
	rec.revoked = true
	return m.mintLocked(acc)
}

func (m *Memory) Register(ctx context.Context, input RegisterInput) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, &Error{Message: "A valid email is required", Err: ErrInvalidInput}
	}
	if strings.TrimSpace(input.Name) == "" {
		return Session{}, &Error{Message: "Name is required", Err: ErrInvalidInput}
	}
	if len(input.Password) < 8 {
		return Session{}, &Error{Message: "Password must be at least 8 characters", Err: ErrInvalidInput}
	}
	if input.Password != input.PasswordConfirmation {
		return Session{}, &Error{Message: "Password confirmation does not match", Err: ErrInvalidInput}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[email]; ok {
		return Session{}, &Error{Message: "Email already registered", Err: ErrAlreadyExists}
	}
	acc := &account{
		profile: Profile{
			ID:        ids.Record(),
			Email:     email,
			Name:      strings.TrimSpace(input.Name),
			Status:    "active",
			CreatedAt: m.now().UTC(),
		},
		passwordHash: string(hash),
		verifyCode:   newVerifyCode(),
	}
	m.accounts[email] = acc
	return m.mintLocked(acc)
}

// RequestResetPassword succeeds for unknown emails too; a reset token is
// only minted when the account exists.
func (m *Memory) RequestResetPassword(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[email]; ok {
		m.resetTokens[ids.New()] = email
	}
	return nil
}

func (m *Memory) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(input.Password) < 8 {
		return &Error{Message: "Password must be at least 8 characters", Err: ErrInvalidInput}
	}
	if input.Password != input.PasswordConfirmation {
		return &Error{Message: "Password confirmation does not match", Err: ErrInvalidInput}
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.resetTokens[input.Token]
	if !ok || stored != email {
		return &Error{Message: "Invalid or expired reset token", Err: ErrInvalidToken}
	}
	acc, ok := m.accounts[email]
	if !ok {
		return &Error{Message: "Invalid or expired reset token", Err: ErrInvalidToken}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc.passwordHash = string(hash)
	delete(m.resetTokens, input.Token)
	return nil
}

func (m *Memory) VerifyEmail(ctx context.Context, email, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok || acc.verifyCode == "" || acc.verifyCode != token {
		return &Error{Message: "Invalid verification code", Err: ErrInvalidToken}
	}
	acc.verified = true
	acc.verifyCode = ""
	return nil
}

func (m *Memory) ResendVerificationCode(ctx context.Context, email string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok {
		return "", &Error{Message: "Account not found", Err: ErrNotFound}
	}
	if m.resendEvery > 0 {
		limiter, ok := m.limiters[email]
		if !ok {
			limiter = rate.NewLimiter(rate.Every(m.resendEvery), 1)
			m.limiters[email] = limiter
		}
		if !limiter.Allow() {
			return "", &Error{Message: "Please wait before requesting another code", Err: ErrRateLimited}
		}
	}
	acc.verified = false
	acc.verifyCode = newVerifyCode()
	return "Verification code sent", nil
}

func (m *Memory) Logout(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	claims, err := m.parseAccess(accessToken)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.accountByIDLocked(claims.Subject)
	if acc == nil {
		return &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	for _, rec := range m.refresh {
		if rec.email == acc.profile.Email {
			rec.revoked = true
		}
	}
	return nil
}

func (m *Memory) Me(ctx context.Context, accessToken string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	claims, err := m.parseAccess(accessToken)
	if err != nil {
		return Profile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.accountByIDLocked(claims.Subject)
	if acc == nil {
		return Profile{}, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	return acc.profile, nil
}

// VerificationCode exposes the pending code for an email. Test helper.
func (m *Memory) VerificationCode(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[email]; ok {
		return acc.verifyCode
	}
	return ""
}

// ResetTokenFor exposes the latest reset token for an email. Test helper.
func (m *Memory) ResetTokenFor(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, stored := range m.resetTokens {
		if stored == email {
			return token
		}
	}
	return ""
}

func (m *Memory) accountByIDLocked(id string) *account {
	for _, acc := range m.accounts {
		if acc.profile.ID == id {
			return acc
		}
	}
	return nil
}

func (m *Memory) mintLocked(acc *account) (Session, error) {
	now := m.now().UTC()
	roleNames := make([]string, 0, len(acc.roles))
	for _, r := range acc.roles {
		roleNames = append(roleNames, r.Name)
	}
	claims := Claims{
		Roles: roleNames,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   acc.profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			ID:        ids.New(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return Session{}, err
	}
	refreshSecret := base64.RawURLEncoding.EncodeToString(secretBytes)
	tokenID := ids.New()
	m.refresh[tokenID] = &refreshRecord{
		email:     acc.profile.Email,
		tokenHash: hashSecret(refreshSecret),
		expiresAt: now.Add(m.refreshTTL),
	}

	return Session{
		Credentials: Credentials{
			TokenType:    "Bearer",
			ExpiresIn:    strconv.Itoa(int(m.accessTTL / time.Second)),
			AccessToken:  access,
			RefreshToken: tokenID + "." + refreshSecret,
		},
		User:        acc.profile,
		Roles:       append([]Role{}, acc.roles...),
		Permissions: append([]string{}, acc.permissions...),
	}, nil
}

func (m *Memory) parseAccess(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return nil, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, &Error{Message: "Session expired", Err: ErrInvalidToken}
	}
	return claims, nil
}

func splitRefreshToken(raw string) (id, secret string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidToken
	}
	return parts[0], parts[1], nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func newVerifyCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(fmt.Sprintf("authsvc: generate code: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}
