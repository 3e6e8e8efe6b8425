package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// Claims is the bearer token payload. Subject carries the numeric user id.
type Claims struct {
	Roles []string `json:"roles,omitempty"`

	jwt.RegisteredClaims
}

type VerifierConfig struct {
	Secret        []byte
	Issuer        string
	CacheTTL      time.Duration
	CacheMaxEntry int
	AllowedLeeway time.Duration
}

// JWTVerifier validates HS256 bearer tokens and resolves them into principals.
type JWTVerifier struct {
	cfg   VerifierConfig
	cache *principalCache
	now   func() time.Time
}

func NewJWTVerifier(cfg VerifierConfig) (*JWTVerifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.CacheMaxEntry <= 0 {
		cfg.CacheMaxEntry = 10000
	}

	return &JWTVerifier{
		cfg:   cfg,
		cache: newPrincipalCache(cfg.CacheTTL, cfg.CacheMaxEntry),
		now:   time.Now,
	}, nil
}

func (v *JWTVerifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := v.cache.Get(key, v.now()); ok {
		return principal, nil
	}

	claims, err := v.parse(token)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrUnauthorized, err)
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || userID <= 0 {
		return user.Principal{}, fmt.Errorf("%w: subject must be a positive user id", usecase.ErrUnauthorized)
	}

	principal := user.Principal{
		UserID: userID,
		Roles:  append([]string(nil), claims.Roles...),
	}

	expiresAt := v.now().Add(v.cfg.CacheTTL)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expiresAt) {
		expiresAt = claims.ExpiresAt.Time
	}
	v.cache.Set(key, principal, expiresAt)

	return principal, nil
}

func (v *JWTVerifier) parse(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(v.cfg.AllowedLeeway),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}
	return *claims, nil
}

// Sign issues a token for the given principal. Used by tooling and tests.
func Sign(secret []byte, issuer string, principal user.Principal, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Roles: append([]string(nil), principal.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.UserID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
