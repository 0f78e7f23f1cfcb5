package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
)

const (
	accessKind  = "access"
	refreshKind = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTConfig struct {
	Issuer         string
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
}

type JWTManager struct {
	cfg JWTConfig
}

type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// Session rebuilds the session the token was issued for
func (c Claims) Session() (session.Session, error) {
	id, err := uuid.Parse(c.AccountID)
	if err != nil {
		return session.Session{}, ErrInvalidToken
	}
	return session.Session{AccountID: id, Email: c.Email, Name: c.Name}, nil
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg}
}

func (m *JWTManager) AccessTTL() time.Duration {
	return time.Duration(m.cfg.AccessTTLMin) * time.Minute
}

func (m *JWTManager) RefreshTTL() time.Duration {
	return time.Duration(m.cfg.RefreshTTLDays) * 24 * time.Hour
}

func (m *JWTManager) SignAccess(s session.Session) (string, time.Time, error) {
	return m.sign(s, accessKind, m.AccessTTL())
}

func (m *JWTManager) SignRefresh(s session.Session) (string, time.Time, error) {
	return m.sign(s, refreshKind, m.RefreshTTL())
}

func (m *JWTManager) sign(s session.Session, kind string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		AccountID: s.AccountID.String(),
		Email:     s.Email,
		Name:      s.Name,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   s.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	str, err := t.SignedString([]byte(m.cfg.Secret))
	return str, exp, err
}

func (m *JWTManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, accessKind)
}

func (m *JWTManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, refreshKind)
}

// VerifyAccess lets the auth middleware turn a bearer token into a session
func (m *JWTManager) VerifyAccess(tokenStr string) (session.Session, error) {
	claims, err := m.ParseAccess(tokenStr)
	if err != nil {
		return session.Session{}, err
	}
	return claims.Session()
}

func (m *JWTManager) parse(tokenStr, kind string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
