package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/models"
)

type UserRepo struct {
	*Repo[models.User]
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{NewRepo[models.User](db, "date_joined DESC, id DESC", "Groups")}
}

// FindByUsername returns a user by username, or gorm.ErrRecordNotFound
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.query(ctx).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ReplaceGroups sets the user's group membership to exactly groupIDs
func (r *UserRepo) ReplaceGroups(ctx context.Context, user *models.User, groupIDs []uint) error {
	groups := make([]models.Group, 0, len(groupIDs))
	if len(groupIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", groupIDs).Find(&groups).Error; err != nil {
			return err
		}
		if len(groups) != len(groupIDs) {
			return gorm.ErrRecordNotFound
		}
	}
	assoc := r.db.WithContext(ctx).Model(user).Association("Groups")
	var err error
	if len(groups) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(groups)
	}
	if err != nil {
		return err
	}
	user.Groups = groups
	return nil
}
