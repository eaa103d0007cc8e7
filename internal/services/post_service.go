package services

import (
	"errors"
	"fmt"
	"time"

	"socialize/internal/forms"
	"socialize/internal/models"
	"socialize/internal/repositories"
)

// ErrNotPostAuthor is returned when a user changes a post they did not write.
var ErrNotPostAuthor = errors.New("post belongs to another user")

// PostService handles business logic related to posts.
type PostService struct {
	repo      repositories.PostRepository
	userRepo  repositories.UserRepository
	validator *forms.Validator
}

// NewPostService creates a new PostService.
func NewPostService(repo repositories.PostRepository, userRepo repositories.UserRepository) *PostService {
	return &PostService{
		repo:      repo,
		userRepo:  userRepo,
		validator: forms.NewValidator(),
	}
}

// ListPosts retrieves every post of a user.
func (s *PostService) ListPosts(userID uint) ([]models.Post, error) {
	return s.repo.ListByUser(userID)
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id uint) (*models.Post, error) {
	return s.repo.GetByID(id)
}

// CreatePost stores a post authored by userID. Deleted users cannot post.
func (s *PostService) CreatePost(userID uint, post *models.Post) error {
	if err := s.validator.Validate(post); err != nil {
		return err
	}
	author, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if author.IsDeleted {
		return ErrUserDeleted
	}

	post.ID = 0
	post.UserID = author.ID
	post.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(post); err != nil {
		return fmt.Errorf("failed to create post for user %d: %w", userID, err)
	}
	return nil
}

// UpdatePost changes the title and body of a post owned by userID.
func (s *PostService) UpdatePost(userID uint, post *models.Post) error {
	if err := s.validator.Validate(post); err != nil {
		return err
	}
	if err := s.checkAuthor(userID, post.ID); err != nil {
		return err
	}
	post.UserID = userID
	return s.repo.Update(post)
}

// DeletePost deletes a post owned by userID.
func (s *PostService) DeletePost(userID, id uint) error {
	if err := s.checkAuthor(userID, id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *PostService) checkAuthor(userID, postID uint) error {
	existing, err := s.repo.GetByID(postID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrNotPostAuthor
	}
	return nil
}
