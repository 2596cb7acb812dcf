package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	store    StoreAPI
	secret   string
	tokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

type Session struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        UserContext `json:"-"`
}

// Login checks credentials and issues an access token. Unknown users and bad
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	claims := Claims{
		UserID:     user.ID,
		RoleID:     user.RoleID,
		RoleName:   user.RoleName,
		EmployeeID: user.EmployeeID,
	}
	token, err := GenerateToken(s.secret, claims, s.tokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "err", err, "user_id", user.ID)
	}
	return Session{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokenTTL),
		User:        claims.User(),
	}, nil
}

func (s *Service) CreateUser(ctx context.Context, email, password, role, employeeID string) (string, error) {
	if !ValidRole(role) {
		return "", ErrUnknownRole
	}
	roleID, err := s.store.RoleIDByName(ctx, role)
	if err != nil {
		return "", err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	return s.store.CreateUser(ctx, NewUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		RoleID:       roleID,
		EmployeeID:   employeeID,
	})
}

func (s *Service) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return s.store.HasPermission(ctx, roleID, permission)
}
