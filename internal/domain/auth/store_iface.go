package auth

import "context"

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	RoleIDByName(ctx context.Context, name string) (string, error)
	CreateUser(ctx context.Context, user NewUser) (string, error)
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}
