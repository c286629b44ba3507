package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT plus its expiry. Admin tokens are
// short-lived and sent in the Authorization header of the approval
// listing endpoints.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAdminToken builds and signs an HS256 JWT for the admin user. Claims
// are the standard sub/exp/iat plus a fixed ADMIN role.
func NewAdminToken(secret, user string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  user,
		"role": "ADMIN",
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
