package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

var testLog = zerolog.Nop()

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// stubUserRepo is an in-memory credential store honouring the same atomic
// semantics as the real one: security mutations happen under a single lock.
type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	r.seq++
	copy.ID = "user-" + strconv.Itoa(r.seq)
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) RecordLoginFailure(_ context.Context, id string, threshold int, lockFor time.Duration) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.ApplyFailedAttempt(time.Now(), threshold, lockFor)
	return cloneUser(u), nil
}

func (r *stubUserRepo) ClearLoginFailures(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ClearLockout()
	return nil
}

func (r *stubUserRepo) UpdateTwoFactor(_ context.Context, id string, enabled bool, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TwoFactorEnabled = enabled
	u.TwoFactorSecret = secret
	return nil
}

func (r *stubUserRepo) SetPasswordResetToken(_ context.Context, id, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordResetToken = token
	u.PasswordResetTokenExpiry = &expiry
	return nil
}

func (r *stubUserRepo) ConsumeResetToken(_ context.Context, token, newPasswordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken == token && u.PasswordResetTokenExpiry != nil && u.PasswordResetTokenExpiry.After(time.Now()) {
			u.PasswordHash = newPasswordHash
			u.PasswordResetToken = ""
			u.PasswordResetTokenExpiry = nil
			u.ClearLockout()
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrResetTokenInvalid
}

func (r *stubUserRepo) ConsumeEmailVerificationToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailVerificationToken == token && u.EmailVerificationTokenExpiry != nil && u.EmailVerificationTokenExpiry.After(time.Now()) {
			u.MarkEmailVerified()
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrVerificationTokenInvalid
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// get returns the stored record directly, bypassing cloning, for assertions.
func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

// stubCodeCache is an in-memory single-use code cache. TTLs are ignored;
// failWith forces every call to error to exercise degraded-cache paths.
type stubCodeCache struct {
	mu       sync.Mutex
	codes    map[string]string
	failWith error
}

func newStubCodeCache() *stubCodeCache {
	return &stubCodeCache{codes: make(map[string]string)}
}

func (c *stubCodeCache) Store(_ context.Context, email, code string, _ time.Duration) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = code
	return nil
}

func (c *stubCodeCache) Consume(_ context.Context, email, code string) (bool, error) {
	if c.failWith != nil {
		return false, c.failWith
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if stored, ok := c.codes[email]; ok && stored == code {
		delete(c.codes, email)
		return true, nil
	}
	return false, nil
}

// recordingDispatcher captures enqueued side effects synchronously.
type recordingDispatcher struct {
	mu      sync.Mutex
	effects []ports.SideEffect
}

func (d *recordingDispatcher) Enqueue(effect ports.SideEffect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.effects = append(d.effects, effect)
}

func (d *recordingDispatcher) emails() []domain.EmailMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.EmailMessage
	for _, e := range d.effects {
		if e.Email != nil {
			out = append(out, *e.Email)
		}
	}
	return out
}

func (d *recordingDispatcher) events() []domain.UserEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.UserEvent
	for _, e := range d.effects {
		if e.Event != nil {
			out = append(out, *e.Event)
		}
	}
	return out
}

// stubRoleRepo backs the registry role authority with a fixed role set.
type stubRoleRepo struct {
	roles map[string]*domain.AdminRole
	err   error
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.AdminRole)}
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.AdminRole) (*domain.AdminRole, error) {
	if _, ok := r.roles[role.RoleName]; ok {
		return nil, domain.ErrRoleExists
	}
	copy := *role
	copy.ID = role.RoleName
	r.roles[role.RoleName] = &copy
	return &copy, nil
}

func (r *stubRoleRepo) Save(_ context.Context, role *domain.AdminRole) (*domain.AdminRole, error) {
	copy := *role
	r.roles[role.RoleName] = &copy
	return &copy, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.AdminRole, error) {
	for _, role := range r.roles {
		if role.ID == id {
			copy := *role
			return &copy, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindActiveByName(_ context.Context, name string) (*domain.AdminRole, error) {
	if r.err != nil {
		return nil, r.err
	}
	if role, ok := r.roles[name]; ok && role.IsActive {
		copy := *role
		return &copy, nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) List(_ context.Context) ([]*domain.AdminRole, error) {
	var out []*domain.AdminRole
	for _, role := range r.roles {
		copy := *role
		out = append(out, &copy)
	}
	return out, nil
}

func (r *stubRoleRepo) ListActive(_ context.Context) ([]*domain.AdminRole, error) {
	var out []*domain.AdminRole
	for _, role := range r.roles {
		if role.IsActive {
			copy := *role
			out = append(out, &copy)
		}
	}
	return out, nil
}

var errCacheDown = errors.New("cache down")
