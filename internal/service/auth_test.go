package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storegg/internal/db"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields ...zap.Field) {}
func (m *mockLogger) Info(msg string, fields ...zap.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...zap.Field)  {}
func (m *mockLogger) Error(msg string, fields ...zap.Field) {}
func (m *mockLogger) Sync() error                           { return nil }

type mockAuthDB struct {
	GetPlayerAuthDataFunc func(username string) (int, string, error)
	CreatePlayerFunc      func(username, passwordHash string) (int, error)
}

func (m *mockAuthDB) GetPlayerAuthData(_ context.Context, username string) (int, string, error) {
	return m.GetPlayerAuthDataFunc(username)
}

func (m *mockAuthDB) CreatePlayer(_ context.Context, username, passwordHash string) (int, error) {
	return m.CreatePlayerFunc(username, passwordHash)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func parseClaims(t *testing.T, tokenStr, secret string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	hash := hashOf(t, "secret")
	mockDB := &mockAuthDB{
		GetPlayerAuthDataFunc: func(username string) (int, string, error) {
			return 1, hash, nil
		},
	}
	authSvc := NewAuthService(mockDB, &mockLogger{}, "jwtSecret")

	tokenStr, err := authSvc.Authenticate(context.Background(), "testuser", "secret")
	require.NoError(t, err)

	claims := parseClaims(t, tokenStr, "jwtSecret")
	assert.Equal(t, "testuser", claims["username"])
	assert.Equal(t, float64(1), claims["user_id"])
	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.Greater(t, int64(exp), time.Now().Unix())
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	hash := hashOf(t, "secret")
	mockDB := &mockAuthDB{
		GetPlayerAuthDataFunc: func(username string) (int, string, error) {
			return 1, hash, nil
		},
	}
	authSvc := NewAuthService(mockDB, &mockLogger{}, "jwtSecret")

	_, err := authSvc.Authenticate(context.Background(), "testuser", "guess")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_RegistersNewPlayer(t *testing.T) {
	var stored string
	mockDB := &mockAuthDB{
		GetPlayerAuthDataFunc: func(username string) (int, string, error) {
			return 0, "", db.ErrPlayerNotFound
		},
		CreatePlayerFunc: func(username, passwordHash string) (int, error) {
			stored = passwordHash
			return 42, nil
		},
	}
	authSvc := NewAuthService(mockDB, &mockLogger{}, "jwtSecret")

	tokenStr, err := authSvc.Authenticate(context.Background(), "newbie", "pw")
	require.NoError(t, err)
	assert.Equal(t, float64(42), parseClaims(t, tokenStr, "jwtSecret")["user_id"])
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("pw")))
}

func TestAuthService_Authenticate_DBError(t *testing.T) {
	mockDB := &mockAuthDB{
		GetPlayerAuthDataFunc: func(username string) (int, string, error) {
			return 0, "", errors.New("connection reset")
		},
	}
	authSvc := NewAuthService(mockDB, &mockLogger{}, "jwtSecret")

	_, err := authSvc.Authenticate(context.Background(), "testuser", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_EmptyInput(t *testing.T) {
	authSvc := NewAuthService(db.NewMemoryAuthDB(), &mockLogger{}, "jwtSecret")

	_, err := authSvc.Authenticate(context.Background(), "", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = authSvc.Authenticate(context.Background(), "testuser", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_EmptySecret(t *testing.T) {
	authSvc := NewAuthService(db.NewMemoryAuthDB(), &mockLogger{}, "")

	_, err := authSvc.Authenticate(context.Background(), "testuser", "secret")
	require.Error(t, err)
}

func TestAuthService_Authenticate_SecondLoginVerifies(t *testing.T) {
	authSvc := NewAuthService(db.NewMemoryAuthDB(), &mockLogger{}, "jwtSecret")
	ctx := context.Background()

	_, err := authSvc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = authSvc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = authSvc.Authenticate(ctx, "alice", "pw2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_LostRegistrationRace(t *testing.T) {
	hash := hashOf(t, "secret")
	lookups := 0
	mockDB := &mockAuthDB{
		GetPlayerAuthDataFunc: func(username string) (int, string, error) {
			lookups++
			if lookups == 1 {
				return 0, "", db.ErrPlayerNotFound
			}
			return 7, hash, nil
		},
		CreatePlayerFunc: func(username, passwordHash string) (int, error) {
			return 0, errors.New("duplicate key value violates unique constraint")
		},
	}
	authSvc := NewAuthService(mockDB, &mockLogger{}, "jwtSecret")

	tokenStr, err := authSvc.Authenticate(context.Background(), "racer", "secret")
	require.NoError(t, err)
	assert.Equal(t, float64(7), parseClaims(t, tokenStr, "jwtSecret")["user_id"])

	lookups = 0
	_, err = authSvc.Authenticate(context.Background(), "racer", "other")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_RegistrationFailsWithoutPlayer(t *testing.T) {
	mockDB := &mockAuthDB{
		GetPlayerAuthDataFunc: func(username string) (int, string, error) {
			return 0, "", db.ErrPlayerNotFound
		},
		CreatePlayerFunc: func(username, passwordHash string) (int, error) {
			return 0, errors.New("connection reset")
		},
	}
	authSvc := NewAuthService(mockDB, &mockLogger{}, "jwtSecret")

	_, err := authSvc.Authenticate(context.Background(), "bob", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_ConcurrentFirstLogins(t *testing.T) {
	authSvc := NewAuthService(db.NewMemoryAuthDB(), &mockLogger{}, "jwtSecret")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = authSvc.Authenticate(context.Background(), "newcomer", "pw")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
