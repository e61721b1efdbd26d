package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-pipeline/internal/config"
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const TokenTypeAccess = "access"

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// TokenService validates bearer tokens issued by the session subsystem.
type TokenService interface {
	CreateJWT(userID string, tier domain.UserTier, ttl time.Duration) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type tokenService struct {
	secret []byte
}

func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{secret: []byte(cfg.SecretKey)}
}

func (s *tokenService) CreateJWT(userID string, tier domain.UserTier, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: TokenTypeAccess,
		Tier:      string(tier),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		msg := "JWT validation failed"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "JWT token expired"
		}
		logger.Get().Debug(msg, zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: expected access token, got %q", ErrInvalidJWTToken, claims.TokenType)
	}
	return claims, nil
}
