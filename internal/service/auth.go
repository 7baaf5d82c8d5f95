package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storegg/internal/db"
	"storegg/pkg"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = time.Hour

type AuthService interface {
	// Authenticate signs a token for username. The first login with a new
	// username registers it.
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	authDB    db.AuthDB
	log       pkg.Logger
	jwtSecret string
}

func NewAuthService(authDB db.AuthDB, logger pkg.Logger, jwtSecret string) AuthService {
	return &authService{
		authDB:    authDB,
		log:       logger,
		jwtSecret: jwtSecret,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (string, error) {
	if s.jwtSecret == "" {
		s.log.Error("auth: empty JWT secret key")
		return "", errors.New("could not generate token: empty secret key")
	}
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	id, passHash, err := s.authDB.GetPlayerAuthData(ctx, username)
	switch {
	case errors.Is(err, db.ErrPlayerNotFound):
		id, err = s.register(ctx, username, password)
		if err != nil {
			return "", err
		}
	case err != nil:
		s.log.Error("failed to load player", zap.String("username", username), zap.Error(err))
		return "", fmt.Errorf("failed to load player: %w", err)
	default:
		if bcrypt.CompareHashAndPassword([]byte(passHash), []byte(password)) != nil {
			s.log.Warn("invalid credentials: password mismatch", zap.String("username", username))
			return "", ErrInvalidCredentials
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  id,
		"username": username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.log.Error("failed to generate token", zap.String("username", username), zap.Error(err))
		return "", fmt.Errorf("could not generate token: %w", err)
	}
	s.log.Info("Player authenticated", zap.Int("playerID", id), zap.String("username", username))
	return tokenString, nil
}

func (s *authService) register(ctx context.Context, username, password string) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := s.authDB.CreatePlayer(ctx, username, string(hash))
	if err != nil {
		// a concurrent first login may have registered the name meanwhile
		existingID, existingHash, lookupErr := s.authDB.GetPlayerAuthData(ctx, username)
		if lookupErr != nil {
			s.log.Error("failed to register player", zap.String("username", username), zap.Error(err))
			return 0, err
		}
		if bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(password)) != nil {
			s.log.Warn("invalid credentials: password mismatch", zap.String("username", username))
			return 0, ErrInvalidCredentials
		}
		return existingID, nil
	}
	s.log.Info("Player registered", zap.Int("playerID", id), zap.String("username", username))
	return id, nil
}
