package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/domain/dto"
)

var (
	// ErrInvalidToken is returned when token is invalid or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnknownRole is returned when a token is requested for a role that does not exist.
	ErrUnknownRole = errors.New("unknown role")
)

// ClaimsWithJWT extends dto.Claims with JWT RegisteredClaims for token generation.
type ClaimsWithJWT struct {
	dto.Claims
	jwt.RegisteredClaims
}

// TokenService issues and validates operator bearer tokens.
type TokenService interface {
	// Issue signs a token for an operator.
	Issue(operator string, roles []string) (*dto.TokenResponse, error)
	// Validate checks a token and returns its claims.
	Validate(tokenString string) (*dto.Claims, error)
}

// TokenConfig holds configuration for the token service.
type TokenConfig struct {
	SecretKey      string
	Issuer         string
	AccessTokenTTL time.Duration
}

// NewTokenConfigFromAuthConfig creates TokenConfig from config.AuthConfig.
func NewTokenConfigFromAuthConfig(authConfig config.AuthConfig) TokenConfig {
	return TokenConfig{
		SecretKey:      authConfig.JWTSecretKey,
		Issuer:         authConfig.JWTIssuer,
		AccessTokenTTL: authConfig.AccessTokenTTL,
	}
}

// TokenServiceImpl implements TokenService with HS256 signed tokens.
type TokenServiceImpl struct {
	secretKey      []byte
	issuer         string
	accessTokenTTL time.Duration
	now            func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(cfg TokenConfig) *TokenServiceImpl {
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenServiceImpl{
		secretKey:      []byte(cfg.SecretKey),
		issuer:         cfg.Issuer,
		accessTokenTTL: ttl,
		now:            time.Now,
	}
}

func (s *TokenServiceImpl) Issue(operator string, roles []string) (*dto.TokenResponse, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return nil, &dto.ValidationError{Field: "operator", Message: "is required"}
	}
	if len(roles) == 0 {
		roles = []string{dto.RoleViewer}
	}
	for _, r := range roles {
		if r != dto.RoleViewer && r != dto.RoleAdmin {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRole, r)
		}
	}

	now := s.now()
	claims := &ClaimsWithJWT{
		Claims: dto.Claims{Operator: operator, Roles: roles},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.TokenResponse{Token: token, ExpiresIn: int64(s.accessTokenTTL.Seconds())}, nil
}

func (s *TokenServiceImpl) Validate(tokenString string) (*dto.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ClaimsWithJWT{}, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ClaimsWithJWT); ok && token.Valid {
		return &claims.Claims, nil
	}
	return nil, ErrInvalidToken
}
