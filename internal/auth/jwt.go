package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinJWTSecretBytes is the minimum signing secret length the config loader
// enforces at startup; a short secret makes HS256 brute-forceable.
const MinJWTSecretBytes = 32

const tokenExpiry = 7 * 24 * time.Hour

// Claims carries the user id as the subject in the standard
// {sub, iat, exp} JWT shape.
type Claims struct {
	UserID int64 `json:"-"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
}

// NewJWTService returns nil if secret is shorter than MinJWTSecretBytes,
// so a misconfigured secret fails at startup rather than silently signing
// weak tokens.
func NewJWTService(secret string) *JWTService {
	if len(secret) < MinJWTSecretBytes {
		return nil
	}
	return &JWTService{secret: []byte(secret)}
}

func (s *JWTService) GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   formatUserID(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

var ErrInvalidToken = errors.New("invalid token")

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := parseUserID(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims.UserID = userID

	return claims, nil
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseUserID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
