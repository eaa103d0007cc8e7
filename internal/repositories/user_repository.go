package repositories

import "socialize/internal/models"

// UserRepository defines the interface for user data access.
//
// Update loads the user, applies mutate and saves the result as one unit, so
// concurrent updates to the same user never interleave. If mutate returns an
// error nothing is saved.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetWithPosts(id uint) (*models.User, error)
	Update(id uint, mutate func(user *models.User) error) (*models.User, error)
}
