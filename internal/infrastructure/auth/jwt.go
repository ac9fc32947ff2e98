package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingOrgID     = errors.New("token missing organization id")
	ErrMissingUserID    = errors.New("token missing user id")
)

// Claims carries the identity embedded in an access token. Every token is
// scoped to a single organization; handlers use OrgID to fence queries.
type Claims struct {
	OrgID    string `json:"org_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 access tokens.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

func NewJWTService(secret string, expiration time.Duration, issuer string) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
	}
}

// TokenInput identifies the subject of a new access token.
type TokenInput struct {
	OrgID    uuid.UUID
	UserID   uuid.UUID
	Username string
}

// GenerateToken creates a signed access token for the given subject.
func (s *JWTService) GenerateToken(in TokenInput) (string, time.Time, error) {
	if in.OrgID == uuid.Nil {
		return "", time.Time{}, ErrMissingOrgID
	}
	if in.UserID == uuid.Nil {
		return "", time.Time{}, ErrMissingUserID
	}

	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		OrgID:    in.OrgID.String(),
		UserID:   in.UserID.String(),
		Username: in.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   in.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken verifies the signature and registered claims of an
// access token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.OrgID == "" {
		return nil, ErrMissingOrgID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// OrgUUID parses the organization id carried by the claims.
func (c *Claims) OrgUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.OrgID)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}

// UserUUID parses the user id carried by the claims.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}
