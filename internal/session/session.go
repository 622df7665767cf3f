// Package session manages the console's authentication state: credential
// bundle, authenticated user, derived abilities, and the reset-password
// resend countdown. The full state survives process restarts through a
// Persister.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"adminkit.org/internal/authsvc"
	"adminkit.org/internal/notify"
)

const genericFailure = "Something went wrong"

// Action is the verb of an ability.
type Action string

// ActionManage is the only action the console derives today.
const ActionManage Action = "manage"

// SubjectDefault is the catch-all subject every authenticated session holds.
const SubjectDefault = "default"

// Ability is a derived authorization capability used to gate UI access.
type Ability struct {
	Action  Action `json:"action"`
	Subject string `json:"subject"`
}

// DeriveAbilities maps permissions to manage-abilities and unconditionally
// appends the default catch-all, even for an empty permission list.
func DeriveAbilities(permissions []string) []Ability {
	abilities := make([]Ability, 0, len(permissions)+1)
	for _, p := range permissions {
		abilities = append(abilities, Ability{Action: ActionManage, Subject: p})
	}
	return append(abilities, Ability{Action: ActionManage, Subject: SubjectDefault})
}

// ResetPasswordState tracks the resend window after a reset request.
type ResetPasswordState struct {
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requested_at"`
	Countdown   int       `json:"countdown"`
	CanResend   bool      `json:"can_resend"`
}

// Store holds session state: credentials, profile, abilities, and the
// reset-password countdown.
type Store struct {
	svc  authsvc.Service
	sink notify.Sink
	log  *zap.Logger
	now  func() time.Time

	persister Persister

	window int           // countdown seconds
	tick   time.Duration // countdown granularity

	mu              sync.Mutex
	authenticated   bool
	creds           authsvc.Credentials
	user            authsvc.Profile
	roles           []authsvc.Role
	permissions     []string
	abilities       []Ability
	adminAbilities  []Ability
	scopedAbilities []Ability
	reset           ResetPasswordState
	cancelCountdown chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(sink notify.Sink) Option {
	return func(s *Store) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPersister enables snapshot persistence across restarts.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithCountdown configures the resend window length and tick granularity.
func WithCountdown(seconds int, tick time.Duration) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.window = seconds
		}
		if tick > 0 {
			s.tick = tick
		}
	}
}

// New constructs a session store over an authentication service.
func New(svc authsvc.Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		sink:   notify.Discard,
		log:    zap.NewNop(),
		now:    time.Now,
		window: 60,
		tick:   time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates and, on success, atomically installs the credential
// bundle, user profile (roles and permissions split into their own slots),
// and derived abilities. On failure nothing changes; the failure is surfaced
// with the service message and returned so the caller can block navigation.
func (s *Store) Login(ctx context.Context, email, password string) error {
	sess, err := s.svc.Login(ctx, email, password)
	if err != nil {
		s.sink.Notify(authsvc.Message(err, genericFailure), notify.Error)
		return err
	}
	s.mu.Lock()
	s.installLocked(sess)
	s.authenticated = true
	s.mu.Unlock()
	s.save()
	return nil
}

// RefreshToken rotates the credential bundle. The authenticated flag is left
// as-is: refreshing assumes an established session.
func (s *Store) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.creds.RefreshToken
	s.mu.Unlock()

	sess, err := s.svc.RefreshToken(ctx, refresh)
	if err != nil {
		s.sink.Notify(authsvc.Message(err, genericFailure), notify.Error)
		return err
	}
	s.mu.Lock()
	s.installLocked(sess)
	s.mu.Unlock()
	s.save()
	return nil
}

// Register creates an account with the same all-or-nothing credential
// install as Login.
func (s *Store) Register(ctx context.Context, input authsvc.RegisterInput) error {
	sess, err := s.svc.Register(ctx, input)
	if err != nil {
		s.sink.Notify(authsvc.Message(err, genericFailure), notify.Error)
		return err
	}
	s.mu.Lock()
	s.installLocked(sess)
	s.mu.Unlock()
	s.save()
	return nil
}

// installLocked is the atomic credential-install shared by login, register
// and refresh.
func (s *Store) installLocked(sess authsvc.Session) {
	s.creds = sess.Credentials
	s.user = sess.User
	s.roles = append([]authsvc.Role{}, sess.Roles...)
	s.permissions = append([]string{}, sess.Permissions...)
	s.abilities = DeriveAbilities(sess.Permissions)
}

// SetAbilities re-derives the ability list from a permission set.
func (s *Store) SetAbilities(permissions []string) {
	s.mu.Lock()
	s.abilities = DeriveAbilities(permissions)
	s.mu.Unlock()
	s.save()
}

// Me fetches the current profile without mutating credential state.
func (s *Store) Me(ctx context.Context) (authsvc.Profile, error) {
	s.mu.Lock()
	access := s.creds.AccessToken
	s.mu.Unlock()
	return s.svc.Me(ctx, access)
}

// RequestResetPassword triggers the reset flow and unconditionally restarts
// the resend countdown. Any countdown already running is cancelled first, so
// at most one ticker exists at a time.
func (s *Store) RequestResetPassword(ctx context.Context, email string) error {
	if err := s.svc.RequestResetPassword(ctx, email); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancelCountdown != nil {
		close(s.cancelCountdown)
	}
	cancel := make(chan struct{})
	s.cancelCountdown = cancel
	s.reset = ResetPasswordState{
		Email:       email,
		RequestedAt: s.now(),
		Countdown:   s.window,
		CanResend:   false,
	}
	tick := s.tick
	s.mu.Unlock()
	s.save()

	go s.runCountdown(cancel, tick)
	return nil
}

// runCountdown decrements once per tick until zero, then flips CanResend and
// stops itself.
func (s *Store) runCountdown(cancel chan struct{}, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.cancelCountdown != cancel {
				// A newer request owns the countdown.
				s.mu.Unlock()
				return
			}
			if s.reset.Countdown > 0 {
				s.reset.Countdown--
			}
			if s.reset.Countdown <= 0 {
				s.reset.Countdown = 0
				s.reset.CanResend = true
				s.cancelCountdown = nil
				s.mu.Unlock()
				s.save()
				return
			}
			s.mu.Unlock()
		}
	}
}

// ResetPassword completes a reset with a token from the reset email.
func (s *Store) ResetPassword(ctx context.Context, input authsvc.ResetPasswordInput) error {
	return s.svc.ResetPassword(ctx, input)
}

// VerifyEmail confirms an address with an emailed code.
func (s *Store) VerifyEmail(ctx context.Context, email, token string) error {
	if err := s.svc.VerifyEmail(ctx, email, token); err != nil {
		s.sink.Notify(authsvc.Message(err, genericFailure), notify.Error)
		return err
	}
	return nil
}

// ResendVerificationCode requests a fresh verification code.
func (s *Store) ResendVerificationCode(ctx context.Context, email string) error {
	msg, err := s.svc.ResendVerificationCode(ctx, email)
	if err != nil {
		s.sink.Notify(authsvc.Message(err, genericFailure), notify.Error)
		return err
	}
	if msg == "" {
		msg = "Verification code sent"
	}
	s.sink.Notify(msg, notify.Success)
	return nil
}

// Logout clears the session unconditionally. The remote call is best-effort:
// a failure is logged and never returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	access := s.creds.AccessToken
	s.mu.Unlock()

	if err := s.svc.Logout(ctx, access); err != nil {
		s.log.Warn("remote logout failed", zap.Error(err))
	}

	s.mu.Lock()
	s.authenticated = false
	s.user = authsvc.Profile{}
	s.roles = nil
	s.permissions = nil
	s.creds = authsvc.Credentials{}
	s.abilities = nil
	s.adminAbilities = nil
	s.scopedAbilities = nil
	s.mu.Unlock()
	s.save()
	return nil
}

// Authenticated reports whether a session is established.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Credentials returns the current token bundle.
func (s *Store) Credentials() authsvc.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// User returns the authenticated profile.
func (s *Store) User() authsvc.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Roles returns the granted roles.
func (s *Store) Roles() []authsvc.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]authsvc.Role{}, s.roles...)
}

// Permissions returns the granted permission strings.
func (s *Store) Permissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.permissions...)
}

// Abilities returns the derived ability list.
func (s *Store) Abilities() []Ability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Ability{}, s.abilities...)
}

// ResetPasswordState returns the countdown state.
func (s *Store) ResetPasswordState() ResetPasswordState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset
}
