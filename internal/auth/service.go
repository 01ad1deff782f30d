package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/user"
)

// UserRepository is the slice of the user port the auth flow needs. GetByID
// must return the user with roles and direct assignments loaded: the actor
// it yields is handed straight to the permission resolver.
type UserRepository interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id string) (*user.User, error)
}

type Service struct {
	users          UserRepository
	tokenGenerator TokenGeneratorAPI
}

func NewService(users UserRepository, tokenGen TokenGeneratorAPI) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns a token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, err
	}
	if u == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !u.IsActive() {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

// RefreshTokens validates the refresh token and rotates the pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}
	if u == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !u.IsActive() {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(u)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetActor loads the user a validated token belongs to, with the role and
// assignment sets the resolver consumes. Loaded fresh on every request so
// permission changes take effect immediately.
func (s *Service) GetActor(userID string) (*user.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrInvalidToken
	}
	if !u.IsActive() {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

func (s *Service) issueTokens(u *user.User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID, email string) (string, error) {
	return j.sign(userID, email, j.AccessTokenSecret, j.AccessTokenTTL)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID, email string) (string, error) {
	return j.sign(userID, email, j.RefreshTokenSecret, j.RefreshTokenTTL)
}

func (j *JWTTokenGenerator) sign(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken accepts tokens signed with either secret so refresh tokens
// validate through the same path.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := j.parseWith(tokenString, j.AccessTokenSecret)
	if err == nil {
		return claims, nil
	}
	return j.parseWith(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parseWith(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
