// Package forms turns untrusted request input into user patches.
//
// Forms are validated in one pass before any conversion happens, and the
// password is carried raw until it is applied to a models.User, where it is
// hashed exactly once.
package forms

import (
	"fmt"
	"strings"
	"time"

	"socialize/internal/models"
)

// UserCreationForm is the registration payload.
type UserCreationForm struct {
	Username    string `json:"username" validate:"required,max=100"`
	DisplayName string `json:"displayname" validate:"omitempty,max=100"`
	Password    string `json:"password" validate:"required,notblank,min=8,maxbytes=72"`
	Mobile      string `json:"mobile" validate:"omitempty,len=10,number"`
	Email       string `json:"email" validate:"required,email,max=255"`
	ImageRef    string `json:"image" validate:"omitempty,max=255"`
}

// UserUpdateForm is the profile edit payload. Every field is optional.
type UserUpdateForm struct {
	Username    string `json:"username" validate:"omitempty,max=100"`
	DisplayName string `json:"displayname" validate:"omitempty,max=100"`
	Mobile      string `json:"mobile" validate:"omitempty,len=10,number"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	ImageRef    string `json:"image" validate:"omitempty,max=255"`
}

// PasswordChangeForm carries a password change. Confirmation must repeat New.
type PasswordChangeForm struct {
	Current      string `json:"current_password" validate:"required"`
	Confirmation string `json:"confirm_password" validate:"required"`
	New          string `json:"new_password" validate:"required,notblank,min=8,maxbytes=72"`
}

// Normalize trims surrounding whitespace from every field except the password,
// so blank values count as missing.
func (f *UserCreationForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.DisplayName = strings.TrimSpace(f.DisplayName)
	f.Mobile = strings.TrimSpace(f.Mobile)
	f.Email = strings.TrimSpace(f.Email)
	f.ImageRef = strings.TrimSpace(f.ImageRef)
}

func (f *UserUpdateForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.DisplayName = strings.TrimSpace(f.DisplayName)
	f.Mobile = strings.TrimSpace(f.Mobile)
	f.Email = strings.TrimSpace(f.Email)
	f.ImageRef = strings.TrimSpace(f.ImageRef)
}

// ToPatch copies every non-empty field. The password is copied as typed.
func (f UserCreationForm) ToPatch() models.UserPatch {
	return models.UserPatch{
		Username:    present(f.Username),
		DisplayName: present(f.DisplayName),
		Password:    present(f.Password),
		Mobile:      present(f.Mobile),
		Email:       present(f.Email),
		ImageRef:    present(f.ImageRef),
	}
}

func (f UserUpdateForm) ToPatch() models.UserPatch {
	return models.UserPatch{
		Username:    present(f.Username),
		DisplayName: present(f.DisplayName),
		Mobile:      present(f.Mobile),
		Email:       present(f.Email),
		ImageRef:    present(f.ImageRef),
	}
}

// FromUser pre-fills an edit form from an existing user.
func FromUser(u *models.User) UserUpdateForm {
	return UserUpdateForm{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Mobile:      u.Mobile,
		Email:       u.Email,
		ImageRef:    u.ImageRef,
	}
}

// PatchFromUser projects a user into a patch. The password is never included.
func PatchFromUser(u *models.User) models.UserPatch {
	return FromUser(u).ToPatch()
}

// BuildUser creates a finalized, not yet persisted user from a validated creation form.
func BuildUser(f UserCreationForm, h models.PasswordHasher, now func() time.Time) (*models.User, error) {
	patch := f.ToPatch()

	user := models.NewUser(now)
	user.Merge(patch)

	if secret, ok := patch.Password.Get(); ok {
		if err := user.SetPassword(h, secret); err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}
	}

	user.FinalizeOnCreate()
	return user, nil
}

func present(s string) models.Optional[string] {
	if s == "" {
		return models.None[string]()
	}
	return models.Some(s)
}

func (f UserCreationForm) String() string {
	return fmt.Sprintf("UserCreationForm(username=%s)", f.Username)
}
