package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/valcriss/sovrane/internal/user"
)

type ctxKey string

const ContextActorKey ctxKey = "actor"

// ActorFromContext returns the authenticated user placed in the request
// context by the auth middleware.
func ActorFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(ContextActorKey).(*user.User)
	return u, ok
}

func ContextWithActor(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, ContextActorKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
