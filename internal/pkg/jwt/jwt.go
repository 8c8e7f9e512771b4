package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(actor auth.Actor) (token string, expiresAt int64, err error)
	GenerateSSEToken(actor auth.Actor) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (auth.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

// JWTService signs HS256 tokens. Tokens are issued by the HR platform's login
// service with the same secret; GenerateAccessToken exists for tooling and tests.
type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}
	return &JWTService{
		accessTokenExpiration: exp,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(actor auth.Actor) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()
	_, token, err = j.tokenAuth.Encode(map[string]interface{}{
		"user_id": actor.UserID,
		"role":    string(actor.Role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	})
	return token, expiresAt, err
}

// GenerateSSEToken issues a short-lived token for EventSource clients, which
// cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(actor auth.Actor) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()
	_, token, err = j.tokenAuth.Encode(map[string]interface{}{
		"user_id": actor.UserID,
		"role":    string(actor.Role),
		"type":    TokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken verifies signature, expiry and type of an SSE token.
func (j *JWTService) ValidateSSEToken(tokenString string) (auth.Actor, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return auth.Actor{}, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return auth.Actor{}, auth.ErrInvalidToken
	}
	return ActorFromClaims(claims, TokenTypeSSE)
}

// ActorFromClaims builds the actor from verified claims and checks the token type.
func ActorFromClaims(claims map[string]interface{}, wantType string) (auth.Actor, error) {
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		return auth.Actor{}, auth.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return auth.Actor{}, auth.ErrUnknownSubject
	}
	role, _ := claims["role"].(string)
	return auth.Actor{UserID: userID, Role: auth.Role(role)}, nil
}
