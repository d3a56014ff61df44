// API keys are looked up by an exact hash match (the storage port only
// exposes FindApiKeyByHash), so unlike passwords their secret is hashed
// with a deterministic, unsalted SHA-256 rather than bcrypt or argon2: a
// randomized hash can't back a unique index lookup. The entropy lives in
// the 24-byte random secret itself, not in the hash function.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"

	"github.com/faiscadev/flaglite/internal/domain"
)

const (
	ProjectKeyPrefix     = "ffl_proj_"
	EnvironmentKeyPrefix = "ffl_env_"

	secretBytes = 24 // base32-encodes to 39 chars, comfortably over the 32-char minimum
)

// GenerateApiKey returns a plaintext secret (with its kind prefix) and the
// SHA-256 hash of the full plaintext to store.
func GenerateApiKey(kind domain.ApiKeyKind) (plaintext, hash string, err error) {
	prefix := ProjectKeyPrefix
	if kind == domain.ApiKeyKindEnvironment {
		prefix = EnvironmentKeyPrefix
	}

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	plaintext = prefix + secret
	hash = HashApiKey(plaintext)
	return plaintext, hash, nil
}

// HashApiKey is applied both at creation and at lookup time so the
// storage port's FindApiKeyByHash can do an exact-match query.
func HashApiKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// ClassifyToken classifies a bearer token by prefix: project-key prefix,
// then environment-key prefix, then "otherwise JWT".
func ClassifyToken(token string) (kind domain.PrincipalKind) {
	switch {
	case hasPrefix(token, ProjectKeyPrefix):
		return domain.PrincipalProjectKey
	case hasPrefix(token, EnvironmentKeyPrefix):
		return domain.PrincipalEnvKey
	default:
		return domain.PrincipalUser
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
