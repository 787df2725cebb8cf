package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL     = 24 * time.Hour
	sessionRefresh = 20 * time.Hour
)

// Module handles user accounts and both token schemes: stateless JWTs for
// the mobile app and Redis-backed session tokens with sliding expiry.
type Module struct {
	db        *pgxpool.Pool
	redis     *redis.Client
	jwtSecret string
}

func NewModule(db *pgxpool.Pool, redisClient *redis.Client, jwtSecret string) *Module {
	return &Module{db: db, redis: redisClient, jwtSecret: jwtSecret}
}

func generateSecureToken(length int) (string, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(randomBytes), nil
}

func (m *Module) createUser(ctx context.Context, username, password, email string) (string, error) {
	var exists bool
	err := m.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	userID := uuid.NewString()
	_, err = m.db.Exec(ctx,
		"INSERT INTO users (id, username, password, email, created_at) VALUES ($1, $2, $3, $4, now())",
		userID, username, string(hashedPassword), email)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (m *Module) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(sessionTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.jwtSecret))
}

func (m *Module) authenticateUser(ctx context.Context, username, password string) (string, error) {
	var userID, passwordHash string
	err := m.db.QueryRow(ctx, "SELECT id, password FROM users WHERE username = $1", username).Scan(&userID, &passwordHash)
	if err != nil {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	return userID, nil
}

// RegisterWithJWT creates an account and returns a signed JWT plus the new
// user id.
func (m *Module) RegisterWithJWT(ctx context.Context, username, password, email string) (string, string, error) {
	userID, err := m.createUser(ctx, username, password, email)
	if err != nil {
		return "", "", err
	}
	token, err := m.generateJWT(userID)
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// LoginWithJWT authenticates and returns a signed JWT plus the user id.
func (m *Module) LoginWithJWT(ctx context.Context, username, password string) (string, string, error) {
	userID, err := m.authenticateUser(ctx, username, password)
	if err != nil {
		return "", "", err
	}
	token, err := m.generateJWT(userID)
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// LoginWithSession authenticates and issues a Redis-backed session token.
func (m *Module) LoginWithSession(ctx context.Context, username, password string) (string, string, error) {
	userID, err := m.authenticateUser(ctx, username, password)
	if err != nil {
		return "", "", err
	}
	token, err := generateSecureToken(32)
	if err != nil {
		return "", "", err
	}
	if err := m.redis.Set(ctx, "session:"+token, userID, sessionTTL).Err(); err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// ValidateTokenJWT checks a JWT and returns the user id it carries.
func (m *Module) ValidateTokenJWT(ctx context.Context, token string) (string, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return "", errors.New("invalid token")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user_id in token")
	}
	return userID, nil
}

// ValidateTokenSession checks a session token and slides its expiry.
func (m *Module) ValidateTokenSession(ctx context.Context, token string) (string, error) {
	key := "session:" + token
	userID, err := m.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errors.New("invalid token")
	} else if err != nil {
		return "", err
	}

	ttl, err := m.redis.TTL(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return "", err
	}
	if ttl < sessionRefresh {
		if err := m.redis.Expire(ctx, key, sessionTTL).Err(); err != nil {
			return "", err
		}
	}
	return userID, nil
}

// LogoutSession drops a session token. JWT logout is client-side.
func (m *Module) LogoutSession(ctx context.Context, token string) error {
	return m.redis.Del(ctx, "session:"+token).Err()
}

// GetUser returns the username and email for a user id.
func (m *Module) GetUser(ctx context.Context, userID string) (string, string, error) {
	var username, email string
	err := m.db.QueryRow(ctx, "SELECT username, email FROM users WHERE id = $1", userID).Scan(&username, &email)
	if err != nil {
		return "", "", errors.New("user not found")
	}
	return username, email, nil
}

// ChangePassword changes the user's password after verifying the old one.
func (m *Module) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	var passwordHash string
	err := m.db.QueryRow(ctx, "SELECT password FROM users WHERE id = $1", userID).Scan(&passwordHash)
	if err != nil {
		return errors.New("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = m.db.Exec(ctx, "UPDATE users SET password = $1 WHERE id = $2", string(hashedPassword), userID)
	return err
}

// ChangeEmail changes the user's email after verifying the password.
func (m *Module) ChangeEmail(ctx context.Context, userID, password, newEmail string) error {
	var passwordHash string
	err := m.db.QueryRow(ctx, "SELECT password FROM users WHERE id = $1", userID).Scan(&passwordHash)
	if err != nil {
		return errors.New("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return errors.New("invalid password")
	}
	_, err = m.db.Exec(ctx, "UPDATE users SET email = $1 WHERE id = $2", newEmail, userID)
	return err
}
