package ghost

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidAdminKey = errors.New("admin key must be <id>:<hex secret>")

const tokenTTL = 5 * time.Minute

// adminKey is a Ghost Admin API key split into its id and decoded secret.
type adminKey struct {
	id     string
	secret []byte
}

func parseAdminKey(s string) (adminKey, error) {
	id, secretHex, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || id == "" || secretHex == "" {
		return adminKey{}, ErrInvalidAdminKey
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return adminKey{}, fmt.Errorf("%w: %v", ErrInvalidAdminKey, err)
	}
	return adminKey{id: id, secret: secret}, nil
}

// token signs a short-lived admin token. Ghost wants the key id in the
// kid header and "/admin/" as the audience.
func (k adminKey) token(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		Audience:  jwt.ClaimStrings{"/admin/"},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = k.id
	return t.SignedString(k.secret)
}
