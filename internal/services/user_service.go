package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"socialize/internal/credentials"
	"socialize/internal/forms"
	"socialize/internal/metrics"
	"socialize/internal/models"
	"socialize/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

var (
	// ErrInvalidCredentials is returned for unknown users, deleted users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDeleted is returned when a deleted user is asked to change.
	ErrUserDeleted = errors.New("user has been deleted")
)

// UserService handles registration, authentication and profile changes.
type UserService struct {
	userRepo   repositories.UserRepository
	creds      *credentials.Manager
	validator  *forms.Validator
	publisher  EventPublisher
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// Option customizes a UserService.
type Option func(*UserService)

func WithPublisher(p EventPublisher) Option { return func(s *UserService) { s.publisher = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *UserService) { s.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(s *UserService) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *UserService) { s.now = now } }

func WithTokenDuration(d time.Duration) Option { return func(s *UserService) { s.tokenDurat = d } }

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, creds *credentials.Manager, jwtSecret string, opts ...Option) *UserService {
	s := &UserService{
		userRepo:   userRepo,
		creds:      creds,
		validator:  forms.NewValidator(),
		log:        slog.Default(),
		now:        time.Now,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the form, builds a finalized user and stores it.
func (s *UserService) Register(form forms.UserCreationForm) (*models.User, error) {
	form.Normalize()
	if err := s.validator.Validate(form); err != nil {
		s.metrics.Registration(metrics.ResultRejected)
		return nil, err
	}

	if existing, err := s.userRepo.GetByUsername(form.Username); err == nil && existing != nil {
		s.metrics.Registration(metrics.ResultRejected)
		return nil, fmt.Errorf("username '%s': %w", form.Username, repositories.ErrUsernameTaken)
	}

	user, err := forms.BuildUser(form, s.creds, s.now)
	if err != nil {
		s.metrics.Registration(metrics.ResultFailure)
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		s.metrics.Registration(metrics.ResultFailure)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.metrics.Registration(metrics.ResultSuccess)
	s.log.Info("user registered", "user", user)
	publishEvent(s.publisher, s.log, newUserEvent(EventUserRegistered, user, s.now()))
	return user, nil
}

// LoginUser authenticates a user, records the login time and returns a JWT token.
// The username is trimmed the same way registration trims it.
func (s *UserService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil || user.IsDeleted {
		s.metrics.Login(metrics.ResultFailure)
		return "", ErrInvalidCredentials
	}

	if !s.creds.Verify(password, user.Password) {
		s.metrics.Login(metrics.ResultFailure)
		return "", ErrInvalidCredentials
	}

	now := s.now()
	user, err = s.userRepo.Update(user.ID, func(u *models.User) error {
		u.MarkLoggedIn(now)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to record login: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      now.Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.metrics.Login(metrics.ResultSuccess)
	publishEvent(s.publisher, s.log, newUserEvent(EventUserLoggedIn, user, now))
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *UserService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", "error", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// EditForm returns the profile of a user pre-filled into an update form.
func (s *UserService) EditForm(id uint) (forms.UserUpdateForm, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return forms.UserUpdateForm{}, err
	}
	return forms.FromUser(user), nil
}

// UpdateProfile merges the supplied fields of form into the stored user.
// Fields left empty keep their current value.
func (s *UserService) UpdateProfile(id uint, form forms.UserUpdateForm) (*models.User, error) {
	form.Normalize()
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}
	patch := form.ToPatch()

	if username, ok := patch.Username.Get(); ok {
		if existing, err := s.userRepo.GetByUsername(username); err == nil && existing.ID != id {
			return nil, fmt.Errorf("username '%s': %w", username, repositories.ErrUsernameTaken)
		}
	}

	user, err := s.userRepo.Update(id, func(u *models.User) error {
		if u.IsDeleted {
			return ErrUserDeleted
		}
		u.Merge(patch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ProfileUpdate()
	event := newUserEvent(EventUserUpdated, user, s.now())
	event.Fields = suppliedFields(patch)
	publishEvent(s.publisher, s.log, event)
	return user, nil
}

// ChangePassword replaces the password once the current one verifies and the
// new one is confirmed. The comparison of new and confirmation happens before hashing.
func (s *UserService) ChangePassword(id uint, form forms.PasswordChangeForm) error {
	if err := s.validator.Validate(form); err != nil {
		s.metrics.CredentialChange(metrics.ResultRejected)
		return err
	}

	user, err := s.userRepo.Update(id, func(u *models.User) error {
		if u.IsDeleted {
			return ErrUserDeleted
		}
		if !s.creds.Verify(form.Current, u.Password) {
			return ErrInvalidCredentials
		}
		return u.ChangePassword(s.creds, form.New, form.Confirmation)
	})
	if err != nil {
		if errors.Is(err, credentials.ErrCredentialMismatch) {
			s.metrics.CredentialChange(metrics.ResultMismatch)
		} else {
			s.metrics.CredentialChange(metrics.ResultFailure)
		}
		return err
	}

	s.metrics.CredentialChange(metrics.ResultSuccess)
	s.log.Info("password changed", "user", user)
	publishEvent(s.publisher, s.log, newUserEvent(EventUserPasswordChanged, user, s.now()))
	return nil
}

// SetActive records a session liveness signal for the user.
func (s *UserService) SetActive(id uint, active bool) error {
	user, err := s.userRepo.Update(id, func(u *models.User) error {
		if u.IsDeleted && active {
			return ErrUserDeleted
		}
		u.SetActive(active)
		return nil
	})
	if err != nil {
		return err
	}

	event := newUserEvent(EventUserPresence, user, s.now())
	event.Active = &active
	publishEvent(s.publisher, s.log, event)
	return nil
}

// DeleteUser flags the user as deleted. The row and its posts stay in place.
func (s *UserService) DeleteUser(id uint) error {
	user, err := s.userRepo.Update(id, func(u *models.User) error {
		if u.IsDeleted {
			return ErrUserDeleted
		}
		u.MarkDeleted()
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Deletion()
	s.log.Info("user deleted", "user", user)
	publishEvent(s.publisher, s.log, newUserEvent(EventUserDeleted, user, s.now()))
	return nil
}

// PostsByID returns the posts of a user keyed by post ID.
func (s *UserService) PostsByID(id uint) (map[uint]models.Post, error) {
	user, err := s.userRepo.GetWithPosts(id)
	if err != nil {
		return nil, err
	}
	return user.PostsByID(), nil
}

func suppliedFields(p models.UserPatch) []string {
	var fields []string
	if p.Username.IsPresent() {
		fields = append(fields, "username")
	}
	if p.DisplayName.IsPresent() {
		fields = append(fields, "displayname")
	}
	if p.Mobile.IsPresent() {
		fields = append(fields, "mobile")
	}
	if p.Email.IsPresent() {
		fields = append(fields, "email")
	}
	if p.ImageRef.IsPresent() {
		fields = append(fields, "image")
	}
	return fields
}
