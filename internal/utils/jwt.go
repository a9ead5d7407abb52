package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sahabattani/backend/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Subject struct {
	ID    uint
	Email string
	Role  string
}

type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenManager struct {
	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	accessIssuer  string
	refreshIssuer string
	now           func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

func NewTokenManager(cfg *config.Config, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		secret:        []byte(cfg.JWTSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		accessIssuer:  cfg.AccessIssuer,
		refreshIssuer: cfg.RefreshIssuer,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *TokenManager) IssueAccessToken(s Subject) (string, error) {
	return m.sign(s, m.accessIssuer, m.accessTTL)
}

func (m *TokenManager) IssueRefreshToken(s Subject) (string, error) {
	return m.sign(s, m.refreshIssuer, m.refreshTTL)
}

func (m *TokenManager) IssuePair(s Subject) (TokenPair, error) {
	access, err := m.IssueAccessToken(s)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.IssueRefreshToken(s)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) sign(s Subject, issuer string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: s.ID,
		Email:  s.Email,
		Role:   s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(s.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken checks signature and expiry only. Callers tell the two failures
// apart with errors.Is against ErrExpiredToken and ErrInvalidToken.
func (m *TokenManager) VerifyToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr)
}

func (m *TokenManager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, jwt.WithIssuer(m.accessIssuer))
}

func (m *TokenManager) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, jwt.WithIssuer(m.refreshIssuer))
}

func (m *TokenManager) parse(tokenStr string, extra ...jwt.ParserOption) (*Claims, error) {
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}, extra...)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
