package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token's signature is wrong, the
	// signing method is unexpected, or the token is malformed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a structurally valid token is past
	// its expiry claim.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer creates and verifies HS256-signed access and refresh tokens. The
// two token kinds are signed with separate secrets so a leaked access secret
// cannot mint long-lived refresh tokens.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer. TTLs follow the design constants: access tokens
// live accessTTLMin minutes (15 by default), refresh tokens refreshTTLDays
// days (7 by default).
func NewIssuer(accessSecret, refreshSecret string, accessTTLMin, refreshTTLDays int) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessTTLMin) * time.Minute,
		refreshTTL:    time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// RefreshTTL exposes the refresh token lifetime so callers can align the
// persisted row expiry and the cookie max-age with the token's own claim.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess signs a short-lived access token for the given identity.
func (i *Issuer) IssueAccess(userID, email, role string) (string, error) {
	return i.sign(userID, email, role, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the given identity.
func (i *Issuer) IssueRefresh(userID, email, role string) (string, error) {
	return i.sign(userID, email, role, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) sign(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			// jti keeps tokens unique even when two are minted within the
			// same second; the persisted hash lookup depends on it.
			ID: uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(token string) (*Claims, error) {
	return i.verify(token, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *Issuer) VerifyRefresh(token string) (*Claims, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *Issuer) verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a refresh token string. The
// digest is the lookup key for persisted refresh-token rows; the JWT
// signature remains the authenticity boundary.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
