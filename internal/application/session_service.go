package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/helpers"
	"github.com/oksasatya/course-admin/pkg/validation"
)

// SessionService owns the single staff session of this gateway: the remote
// bearer token (persisted in the token store) and the gateway cookie session
// recorded in Redis. Signing in replaces whatever session was active.
type SessionService struct {
	Auth      repository.AuthGateway
	Store     repository.TokenStore
	JWT       *helpers.JWTManager
	Redis     *redis.Client
	Logger    *logrus.Logger
	TTL       time.Duration
	OnSignOut func()

	now func() time.Time

	mu    sync.RWMutex
	token string
	user  entity.User
}

func NewSessionService(auth repository.AuthGateway, tokenStore repository.TokenStore, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, ttl time.Duration) *SessionService {
	return &SessionService{
		Auth:   auth,
		Store:  tokenStore,
		JWT:    jwt,
		Redis:  rdb,
		Logger: logger,
		TTL:    ttl,
		now:    time.Now,
	}
}

type persisted struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResult struct {
	User         entity.User `json:"user"`
	AccessToken  string      `json:"-"`
	AccessExpiry time.Time   `json:"access_expires_at"`
	TokenExpiry  *time.Time  `json:"token_expires_at,omitempty"`
}

func sessionFields(u entity.User, sid string, now time.Time) map[string]any {
	return map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"sid":        sid,
		"created_at": now.UTC().Format(time.RFC3339Nano),
	}
}

// Restore reloads a persisted token. Expired or unreadable tokens are cleared.
func (s *SessionService) Restore() error {
	raw, err := s.Store.Load()
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Token == "" {
		s.Logger.Warn("discarding unreadable persisted session")
		return s.Store.Clear()
	}
	if helpers.TokenExpired(p.Token, s.now()) {
		s.Logger.WithField("user_id", p.User.ID).Info("persisted session expired")
		return s.Store.Clear()
	}
	s.mu.Lock()
	s.token, s.user = p.Token, p.User
	s.mu.Unlock()
	s.Logger.WithField("user_id", p.User.ID).Info("session restored")
	return nil
}

// Token returns the bearer token for outgoing requests, or "" when signed out.
// A token found expired ends the session.
func (s *SessionService) Token() string {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if tok == "" {
		return ""
	}
	if helpers.TokenExpired(tok, s.now()) {
		s.expire()
		return ""
	}
	return tok
}

func (s *SessionService) Active() bool { return s.Token() != "" }

// Current returns the signed-in staff member.
func (s *SessionService) Current() (entity.User, bool) {
	if !s.Active() {
		return entity.User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, true
}

func (s *SessionService) SignIn(ctx context.Context, creds Credentials) (*SignInResult, error) {
	if err := invalid(validation.Struct(creds)); err != nil {
		return nil, err
	}
	token, user, err := s.Auth.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrNotAdmin
	}
	now := s.now()
	if helpers.TokenExpired(token, now) {
		return nil, ErrTokenExpired
	}

	b, err := json.Marshal(persisted{Token: token, User: user})
	if err != nil {
		return nil, err
	}
	if err := s.Store.Save(string(b)); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}

	s.mu.Lock()
	prev := s.user.ID
	s.token, s.user = token, user
	s.mu.Unlock()
	if prev != "" && prev != user.ID {
		if err := helpers.RedisDel(ctx, s.Redis, helpers.KeyAdminSession(prev)); err != nil {
			s.Logger.WithError(err).WithField("user_id", prev).Warn("drop previous session failed")
		}
	}

	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(user.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", user.ID).Error("generate access token failed")
		return nil, err
	}
	key := helpers.KeyAdminSession(user.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, sessionFields(user, sid, now))
	pipe.Expire(ctx, key, s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.Logger.WithError(err).WithField("user_id", user.ID).Error("store session failed")
		return nil, err
	}

	res := &SignInResult{User: user, AccessToken: access, AccessExpiry: aexp}
	if exp, ok, _ := helpers.TokenExpiry(token); ok {
		res.TokenExpiry = &exp
	}
	s.Logger.WithFields(logrus.Fields{"user_id": user.ID, "sid": sid}).Info("staff signed in")
	return res, nil
}

// Authorize checks a gateway access token against the active Redis session.
func (s *SessionService) Authorize(ctx context.Context, claims *helpers.Claims) (map[string]string, error) {
	data, err := s.Redis.HGetAll(ctx, helpers.KeyAdminSession(claims.UserID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data["sid"] != claims.SessionID {
		return nil, ErrSessionNotFound
	}
	if !s.Active() {
		return nil, ErrSignedOut
	}
	return data, nil
}

func (s *SessionService) SignOut(ctx context.Context) error {
	s.mu.RLock()
	uid := s.user.ID
	s.mu.RUnlock()
	if uid != "" {
		if err := helpers.RedisDel(ctx, s.Redis, helpers.KeyAdminSession(uid)); err != nil {
			s.Logger.WithError(err).WithField("user_id", uid).Warn("delete session failed")
		}
	}
	s.clear()
	s.Logger.WithField("user_id", uid).Info("staff signed out")
	return nil
}

func (s *SessionService) expire() {
	s.mu.RLock()
	uid := s.user.ID
	s.mu.RUnlock()
	if uid != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = helpers.RedisDel(ctx, s.Redis, helpers.KeyAdminSession(uid))
		cancel()
	}
	s.Logger.WithField("user_id", uid).Info("session token expired")
	s.clear()
}

func (s *SessionService) clear() {
	s.mu.Lock()
	s.token, s.user = "", entity.User{}
	s.mu.Unlock()
	if err := s.Store.Clear(); err != nil {
		s.Logger.WithError(err).Warn("clear token store failed")
	}
	if s.OnSignOut != nil {
		s.OnSignOut()
	}
}
