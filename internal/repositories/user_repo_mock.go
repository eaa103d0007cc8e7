package repositories

import (
	"fmt"
	"sync"

	"socialize/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users  map[uint]models.User
	nextID uint
	posts  PostRepository
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
// posts backs GetWithPosts and may be nil.
func NewMockUserRepository(posts PostRepository) *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uint]models.User),
		posts: posts,
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	if err := user.CheckInvariants(); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(user.Username, 0) {
		return fmt.Errorf("failed to create user %s: %w", user.Username, ErrUsernameTaken)
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = detach(*user)
	return nil
}

// GetByID returns a user by its ID.
func (r *MockUserRepository) GetByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
	}
	user = detach(user)
	return &user, nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			user = detach(user)
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user with username %s: %w", username, ErrUserNotFound)
}

// GetWithPosts returns a user with the posts currently held by the post repository.
func (r *MockUserRepository) GetWithPosts(id uint) (*models.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if r.posts != nil {
		posts, err := r.posts.ListByUser(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get posts of user %d: %w", id, err)
		}
		user.Posts = posts
	}
	return user, nil
}

// Update applies mutate to a copy of the stored user under the write lock
// and stores the result only when mutate succeeds.
func (r *MockUserRepository) Update(id uint, mutate func(user *models.User) error) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to update user %d: user with ID %d: %w", id, id, ErrUserNotFound)
	}
	user := detach(stored)
	if err := mutate(&user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	if r.usernameTaken(user.Username, id) {
		return nil, fmt.Errorf("failed to update user %d: username %s: %w", id, user.Username, ErrUsernameTaken)
	}
	user.ID = id
	user.CreatedAt = stored.CreatedAt
	r.users[id] = detach(user)

	out := detach(user)
	return &out, nil
}

func (r *MockUserRepository) usernameTaken(username string, except uint) bool {
	for id, u := range r.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

// detach returns a copy that shares no pointers with u.
func detach(u models.User) models.User {
	if u.LastLogin != nil {
		at := *u.LastLogin
		u.LastLogin = &at
	}
	u.Posts = nil
	return u
}
