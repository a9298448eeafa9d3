package repositories

import (
	"context"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// UserRepository interface for user operations (minimal; the challenge
// service is not the owner of user data).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	GetByRole(ctx context.Context, role models.UserRole, limit, offset int) ([]*models.User, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
