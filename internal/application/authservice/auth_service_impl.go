package authservice

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/pkg/config"
)

const issuer = "tixora"

type AuthService struct {
	config *config.Config
	logger zerolog.Logger
}

func NewAuthService(config *config.Config, logger zerolog.Logger) IAuthService {
	return &AuthService{
		config: config,
		logger: logger,
	}
}

func (s *AuthService) Authenticate(_ context.Context, email, password string) error {
	expectedEmail := s.config.Admin.Email
	expectedPassword := s.config.Admin.Password
	if expectedEmail == "" || expectedPassword == "" {
		s.logger.Error().Msg("Admin credentials not configured")
		return domain.ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(expectedEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPassword)) == 1
	if !emailOK || !passwordOK {
		return domain.ErrInvalidCredentials
	}

	return nil
}

func (s *AuthService) IssueSession(_ context.Context, email string) (string, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return "", fmt.Errorf("JWT secret not configured")
	}

	expirationTime := time.Now().Add(24 * time.Hour)
	claim := &domain.Claim{
		Email: email,
		Role:  "admin",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to sign token")
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

func (s *AuthService) VerifyToken(_ context.Context, tokenString string) (*domain.Claim, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*domain.Claim)
	if !ok {
		return nil, fmt.Errorf("invalid claims format")
	}

	if claims.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("token expired")
	}

	if claims.Issuer != issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}

// RedirectTarget names the view an authenticated admin lands on.
func (s *AuthService) RedirectTarget(claim *domain.Claim) string {
	if claim == nil {
		return "/admin/login"
	}
	return "/admin/settings"
}
