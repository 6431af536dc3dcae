package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/romay-erp/romay/internal/capability"
)

const (
	sessionKeyPrefix = "session:"
	refreshKeyPrefix = "refresh_token:"

	defaultIdentityTimeout = 5 * time.Second
)

// ManagerConfig collects dependencies for the session Manager.
type ManagerConfig struct {
	Redis      *redis.Client
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// IdentityTimeout bounds every Resolve so a hung store lookup becomes
	// a deny instead of an indefinite checking state.
	IdentityTimeout time.Duration
	Logger          *slog.Logger
}

// Manager issues and resolves sessions. Access tokens are signed JWTs whose
// authority lives in a Redis record keyed by jti, so logout revokes
// immediately. Refresh tokens are opaque and single-use.
type Manager struct {
	client          *redis.Client
	secret          []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	identityTimeout time.Duration
	logger          *slog.Logger
	group           singleflight.Group
}

type sessionRecord struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// NewManager constructs a Manager.
func NewManager(cfg ManagerConfig) *Manager {
	timeout := cfg.IdentityTimeout
	if timeout <= 0 {
		timeout = defaultIdentityTimeout
	}
	return &Manager{
		client:          cfg.Redis,
		secret:          []byte(cfg.Secret),
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		identityTimeout: timeout,
		logger:          cfg.Logger,
	}
}

// AccessTTL exposes the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// Issue creates a fresh session for the user and returns its token pair.
// A new login fully replaces any prior token on the caller's side; old
// sessions simply age out or are revoked by logout.
func (m *Manager) Issue(ctx context.Context, userID int64, role capability.Role) (string, TokenPair, error) {
	id := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(m.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role.String(),
		"jti":  id,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", TokenPair{}, err
	}

	record, err := json.Marshal(sessionRecord{UserID: userID, Role: role.String()})
	if err != nil {
		return "", TokenPair{}, err
	}
	if err := m.client.Set(ctx, sessionKeyPrefix+id, record, m.accessTTL).Err(); err != nil {
		return "", TokenPair{}, err
	}

	refresh, err := m.issueRefreshToken(ctx, userID)
	if err != nil {
		return "", TokenPair{}, err
	}
	return id, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Resolve verifies an access token against the session store and returns
// the authenticated session. Every failure mode yields an error mapping to
// unauthenticated; a verified-but-revoked or expired token also purges its
// session record so later checks do not retry known-bad credentials.
// Concurrent resolves of the same token share one store lookup.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoToken
	}

	ctx, cancel := context.WithTimeout(ctx, m.identityTimeout)
	defer cancel()

	id, role, expiresAt, err := m.verify(token)
	if err != nil {
		return Session{}, err
	}

	resultCh := m.group.DoChan(id, func() (interface{}, error) {
		// Detached from the caller so a shared lookup survives the first
		// caller's cancellation, but still bounded.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.identityTimeout)
		defer cancel()
		return m.lookup(lookupCtx, id)
	})
	select {
	case <-ctx.Done():
		return Session{}, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return Session{}, res.Err
		}
		record := res.Val.(sessionRecord)
		return Session{
			ID:            id,
			UserID:        record.UserID,
			Role:          role,
			Authenticated: true,
			ExpiresAt:     expiresAt,
		}, nil
	}
}

// Refresh rotates a refresh token: the old token is consumed even when the
// caller later fails, so a leaked token cannot be replayed.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (int64, error) {
	if refreshToken == "" {
		return 0, ErrNoToken
	}
	raw, err := m.client.GetDel(ctx, refreshKeyPrefix+refreshToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenInvalid
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// Revoke destroys the session record and refresh token. Subsequent resolves
// of the access token report unauthenticated.
func (m *Manager) Revoke(ctx context.Context, sessionID, refreshToken string) error {
	if sessionID != "" {
		if err := m.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	if refreshToken != "" {
		if err := m.client.Del(ctx, refreshKeyPrefix+refreshToken).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	return nil
}

func (m *Manager) lookup(ctx context.Context, id string) (interface{}, error) {
	payload, err := m.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRevoked
		}
		return nil, err
	}
	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, ErrTokenInvalid
	}
	return record, nil
}

// verify parses and validates the JWT, returning its jti, role and expiry.
func (m *Manager) verify(token string) (string, capability.Role, time.Time, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			m.purgeExpired(parsed)
			return "", capability.RoleUnknown, time.Time{}, ErrTokenExpired
		}
		return "", capability.RoleUnknown, time.Time{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", capability.RoleUnknown, time.Time{}, ErrTokenInvalid
	}
	id, _ := claims["jti"].(string)
	if id == "" {
		return "", capability.RoleUnknown, time.Time{}, ErrTokenInvalid
	}
	roleClaim, _ := claims["role"].(string)
	role, _ := capability.ParseRole(roleClaim)

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return id, role, expiresAt, nil
}

// purgeExpired drops the session record behind an expired token so the
// store does not keep serving a credential the caller should discard.
func (m *Manager) purgeExpired(parsed *jwt.Token) {
	if parsed == nil {
		return
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	id, _ := claims["jti"].(string)
	if id == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		if m.logger != nil {
			m.logger.Warn("purge expired session", slog.Any("error", err))
		}
	}
}

func (m *Manager) issueRefreshToken(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	key := refreshKeyPrefix + token
	if err := m.client.Set(ctx, key, strconv.FormatInt(userID, 10), m.refreshTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}
