package postgres

import (
	"context"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (u UserPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []*models.User
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (u UserPostgreSQL) GetByRole(ctx context.Context, role models.UserRole, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	query := u.db.WithContext(ctx).Where("role = ?", role)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Order("full_name asc").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (u UserPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (u UserPostgreSQL) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	var count int64
	if err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, role).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
