package models

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// PasswordHasher is the slice of the credential manager a User needs to manage its own password.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	ChangeCredential(current, confirmation, newSecret string) (string, error)
}

var (
	ErrEmptyUsername    = errors.New("username is required")
	ErrMissingPassword  = errors.New("password is required")
	ErrMissingEmail     = errors.New("email is required")
	ErrEmptyDisplayName = errors.New("display name must be set before the user is stored")
)

// User represents a registered member of the network.
// The password hash has no json tag on purpose: it never leaves the service.
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username    string     `json:"username" gorm:"column:username;uniqueIndex;type:varchar(100);not null"`
	DisplayName string     `json:"displayname" gorm:"column:displayname;type:varchar(100)"`
	Password    string     `json:"-" gorm:"column:password;type:varchar(255);not null"`
	Mobile      string     `json:"mobile,omitempty" gorm:"column:mobile_no;type:varchar(20)"`
	Email       string     `json:"email" gorm:"column:email_id;type:varchar(255)"`
	ImageRef    string     `json:"image,omitempty" gorm:"column:profile_image;type:varchar(255)"`
	CreatedAt   time.Time  `json:"created_on" gorm:"column:created_on;<-:create"`
	LastLogin   *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
	IsActive    bool       `json:"is_active" gorm:"column:is_active;default:false"`
	IsDeleted   bool       `json:"is_deleted" gorm:"column:is_deleted;default:false"`
	Posts       []Post     `json:"-" gorm:"foreignKey:UserID"`
}

// TableName keeps the table name stable regardless of gorm's naming strategy.
func (User) TableName() string { return "users" }

// NewUser returns an empty user whose creation time is taken from now.
// A nil clock means time.Now.
func NewUser(now func() time.Time) *User {
	if now == nil {
		now = time.Now
	}
	return &User{CreatedAt: now().UTC()}
}

// SetPassword hashes secret and stores the hash. The plain secret is never kept.
func (u *User) SetPassword(h PasswordHasher, secret string) error {
	hashed, err := h.Hash(secret)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// ChangePassword stores the hash of newSecret once it matches confirmation.
// On failure the existing hash is left untouched.
func (u *User) ChangePassword(h PasswordHasher, newSecret, confirmation string) error {
	hashed, err := h.ChangeCredential(newSecret, confirmation, newSecret)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// FinalizeOnCreate fills in defaults right before the first save.
func (u *User) FinalizeOnCreate() {
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
}

// CheckInvariants reports whether the user is complete enough to be stored.
func (u *User) CheckInvariants() error {
	switch {
	case u.Username == "":
		return ErrEmptyUsername
	case u.Password == "":
		return ErrMissingPassword
	case u.Email == "":
		return ErrMissingEmail
	case u.DisplayName == "":
		return ErrEmptyDisplayName
	}
	return nil
}

// BeforeCreate refuses to insert a user that was not finalized.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	return u.CheckInvariants()
}

// PostsByID indexes the posts currently loaded on the user by their ID.
// The map is rebuilt on every call.
func (u *User) PostsByID() map[uint]Post {
	posts := make(map[uint]Post, len(u.Posts))
	for _, p := range u.Posts {
		posts[p.ID] = p
	}
	return posts
}

// MarkLoggedIn records a successful authentication.
func (u *User) MarkLoggedIn(at time.Time) {
	at = at.UTC()
	u.LastLogin = &at
}

// SetActive records a session liveness signal.
func (u *User) SetActive(active bool) {
	u.IsActive = active
}

// MarkDeleted flags the user as deleted. Rows are never removed, so posts keep their author.
// The active flag is left to liveness signals.
func (u *User) MarkDeleted() {
	u.IsDeleted = true
}

func (u *User) String() string {
	return fmt.Sprintf("User(id=%d, username=%s, created_on=%s)", u.ID, u.Username, u.CreatedAt.Format(time.RFC3339))
}

// LogValue keeps the password hash out of structured logs.
func (u *User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("id", uint64(u.ID)),
		slog.String("username", u.Username),
		slog.Bool("deleted", u.IsDeleted),
	)
}
