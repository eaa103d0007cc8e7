package repositories

import (
	"socialize/internal/models"
)

// PostRepository defines the interface for post data access.
type PostRepository interface {
	ListByUser(userID uint) ([]models.Post, error)
	GetByID(id uint) (*models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	Delete(id uint) error
}
