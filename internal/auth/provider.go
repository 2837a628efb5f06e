package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"modernnotes/internal/errs"
	"modernnotes/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

// Session is the identity the provider currently vouches for.
type Session struct {
	User        model.User
	AccessToken string
	ExpiresAt   time.Time
}

// Provider issues and validates sessions for a single-user process.
// Change notifications run synchronously on the goroutine that caused the change.
type Provider struct {
	db  *gorm.DB
	jwt *JWT
	ttl time.Duration
	log *zap.Logger

	mu      sync.Mutex
	current *Session
	subs    map[uint64]func(*Session)
	nextSub uint64
}

func NewProvider(db *gorm.DB, jwtSvc *JWT, ttl time.Duration, log *zap.Logger) *Provider {
	return &Provider{
		db:   db,
		jwt:  jwtSvc,
		ttl:  ttl,
		log:  log,
		subs: map[uint64]func(*Session){},
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// Register creates the user and signs them in.
func (p *Provider) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, &errs.ValidationError{Field: "email", Msg: "email is required"}
	}
	if len(in.Password) < minPasswordLen {
		return nil, &errs.ValidationError{Field: "password", Msg: "password must be at least 8 characters"}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if name := strings.TrimSpace(in.Username); name != "" {
		u.Username = &name
	}

	if err := p.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, errs.Remote("register", err)
	}

	p.log.Info("user registered", zap.String("user_id", u.ID))
	return p.start(u)
}

// SignIn verifies credentials. Unknown email and wrong password are indistinguishable.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, &errs.ValidationError{Field: "email", Msg: "email and password are required"}
	}

	var u model.User
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUnauthorized
		}
		return nil, errs.Remote("sign in", err)
	}
	if !ComparePassword(u.PasswordHash, password) {
		return nil, errs.ErrUnauthorized
	}

	return p.start(u)
}

// SignOut drops the current session. Signing out without a session is a no-op ack.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if had {
		p.notify(nil)
	}
	return nil
}

// Refresh re-issues the access token of the current session.
func (p *Provider) Refresh(ctx context.Context) (*Session, error) {
	s := p.CurrentSession()
	if s == nil {
		return nil, errs.ErrNoSession
	}

	// reload so profile edits made elsewhere show up
	var u model.User
	if err := p.db.WithContext(ctx).Where("id = ?", s.User.ID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = p.SignOut(ctx)
			return nil, errs.ErrNoSession
		}
		return nil, errs.Remote("refresh", err)
	}
	return p.start(u)
}

// CurrentSession returns the active session, or nil. An expired session is cleared and announced.
func (p *Provider) CurrentSession() *Session {
	p.mu.Lock()
	s := p.current
	if s == nil {
		p.mu.Unlock()
		return nil
	}
	if _, _, err := p.jwt.Verify(s.AccessToken); err != nil {
		p.current = nil
		p.mu.Unlock()
		p.log.Info("session expired", zap.String("user_id", s.User.ID))
		p.notify(nil)
		return nil
	}
	p.mu.Unlock()

	cp := *s
	return &cp
}

// Authenticate returns the current session when token was issued to its user.
func (p *Provider) Authenticate(token string) (*Session, error) {
	uid, _, err := p.jwt.Verify(token)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	s := p.CurrentSession()
	if s == nil {
		return nil, errs.ErrNoSession
	}
	if s.User.ID != uid {
		return nil, errs.ErrUnauthorized
	}
	return s, nil
}

// OnSessionChange registers fn for every session change until the returned cancel is called.
func (p *Provider) OnSessionChange(fn func(*Session)) (cancel func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) start(u model.User) (*Session, error) {
	token, exp, err := p.jwt.Sign(u.ID, u.Email, p.ttl)
	if err != nil {
		return nil, err
	}
	s := &Session{User: u, AccessToken: token, ExpiresAt: exp}

	p.mu.Lock()
	p.current = s
	p.mu.Unlock()

	cp := *s
	p.notify(&cp)
	return &cp, nil
}

func (p *Provider) notify(s *Session) {
	p.mu.Lock()
	fns := make([]func(*Session), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		if s == nil {
			fn(nil)
			continue
		}
		cp := *s
		fn(&cp)
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
