package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"socialize/internal/models"
)

// MockPostRepository is an in-memory implementation of PostRepository.
type MockPostRepository struct {
	posts  map[uint]models.Post
	nextID uint
	mu     sync.RWMutex
}

// NewMockPostRepository creates a new instance of MockPostRepository.
func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		posts: make(map[uint]models.Post),
	}
}

// ListByUser returns the posts of userID ordered by ID.
func (r *MockPostRepository) ListByUser(userID uint) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	postList := make([]models.Post, 0)
	for _, p := range r.posts {
		if p.UserID == userID {
			postList = append(postList, p)
		}
	}
	sort.Slice(postList, func(i, j int) bool { return postList[i].ID < postList[j].ID })
	return postList, nil
}

// GetByID returns a post by its ID.
func (r *MockPostRepository) GetByID(id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %d: %w", id, ErrPostNotFound)
	}
	return &post, nil
}

// Create adds a new post.
func (r *MockPostRepository) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	post.ID = r.nextID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	r.posts[post.ID] = *post
	return nil
}

// Update modifies the title and body of an existing post.
func (r *MockPostRepository) Update(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("post with ID %d: %w", post.ID, ErrPostNotFound)
	}
	stored.Title = post.Title
	stored.Body = post.Body
	r.posts[post.ID] = stored
	return nil
}

// Delete removes a post by its ID.
func (r *MockPostRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post with ID %d: %w", id, ErrPostNotFound)
	}
	delete(r.posts, id)
	return nil
}
