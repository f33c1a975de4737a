package security

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

// UserClaims are the claims the identity provider puts in access tokens.
// Only UserID is used to identify the caller; roles are always read from the
// account record.
type UserClaims struct {
	UserID int32     `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Type   TokenType `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenValidator checks bearer tokens issued elsewhere.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*UserClaims, error)
}

type tokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator accepts HS256 tokens signed with secret. A non-empty
// issuer must match the iss claim.
func NewTokenValidator(secret, issuer string) TokenValidator {
	return &tokenValidator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (v *tokenValidator) ValidateAccessToken(tokenString string) (*UserClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Tokens without a type are treated as access tokens.
	if claims.Type != "" && claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == 0 && claims.Subject != "" {
		uid, err := strconv.ParseInt(claims.Subject, 10, 32)
		if err != nil {
			return nil, ErrInvalidToken
		}
		claims.UserID = int32(uid)
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
