// Package users keeps the portal's user directory in Redis, keyed by
// email, and mints the HMAC session tokens the admin surface checks.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "users:"

var (
	// ErrNotFound reports a lookup for an unregistered email.
	ErrNotFound = errors.New("users: not found")
	// ErrExists reports a registration against a taken email.
	ErrExists = errors.New("users: email already registered")
)

// Role separates the admin surface from the patient one.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// HistoryEntry is one prior triage or visit record on a user profile.
type HistoryEntry struct {
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Outcome string `json:"outcome"`
}

// User is a directory record.
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         Role           `json:"role"`
	Appointments []string       `json:"appointments"`
	History      []HistoryEntry `json:"history"`
}

// Store is the Redis-backed user directory.
type Store struct {
	client    *redis.Client
	jwtSecret string
	tokenTTL  time.Duration
}

// NewStore creates the directory and seeds the built-in accounts when
// they are absent, so a fresh deployment can be logged into.
func NewStore(ctx context.Context, client *redis.Client, jwtSecret string, tokenTTL time.Duration) (*Store, error) {
	s := &Store{client: client, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
	if err := s.seed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) key(email string) string {
	return userKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) seed(ctx context.Context) error {
	seeds := []User{
		{
			ID:    "USR-ADMIN",
			Name:  "Portal Administrator",
			Email: "admin@medilens.com",
			Role:  RoleAdmin,
		},
		{
			ID:           "USR-JOHN",
			Name:         "John Doe",
			Email:        "john@example.com",
			Role:         RolePatient,
			Appointments: []string{},
			History: []HistoryEntry{
				{Date: "2026-07-14", Summary: "Seasonal allergy consultation", Outcome: "Prescribed antihistamines"},
			},
		},
	}
	for _, u := range seeds {
		exists, err := s.client.Exists(ctx, s.key(u.Email)).Result()
		if err != nil {
			return fmt.Errorf("users: seed: %w", err)
		}
		if exists > 0 {
			continue
		}
		if err := s.put(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) put(ctx context.Context, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("users: marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(u.Email), data, 0).Err(); err != nil {
		return fmt.Errorf("users: set: %w", err)
	}
	return nil
}

// Get fetches a user by email.
func (s *Store) Get(ctx context.Context, email string) (*User, error) {
	data, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("users: unmarshal: %w", err)
	}
	return &u, nil
}

// Register creates a new patient account.
func (s *Store) Register(ctx context.Context, name, email string) (*User, error) {
	if _, err := s.Get(ctx, email); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := User{
		ID:           "USR-" + uuid.NewString()[:8],
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         RolePatient,
		Appointments: []string{},
		History:      []HistoryEntry{},
	}
	if err := s.put(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update overwrites a user's mutable profile fields.
func (s *Store) Update(ctx context.Context, u User) error {
	if _, err := s.Get(ctx, u.Email); err != nil {
		return err
	}
	return s.put(ctx, u)
}

// AppendHistory adds a record to the user's visit history.
func (s *Store) AppendHistory(ctx context.Context, email string, entry HistoryEntry) error {
	u, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	u.History = append(u.History, entry)
	return s.put(ctx, *u)
}

// Login looks the user up and mints a signed session token.
func (s *Store) Login(ctx context.Context, email string) (*User, string, error) {
	u, err := s.Get(ctx, email)
	if err != nil {
		return nil, "", err
	}
	token, err := s.mintToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Store) mintToken(u *User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.Email,
		Audience:  jwt.ClaimStrings{string(u.Role)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("users: sign token: %w", err)
	}
	return signed, nil
}
