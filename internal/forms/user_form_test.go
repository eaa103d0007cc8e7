package forms_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"socialize/internal/credentials"
	"socialize/internal/forms"
	"socialize/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func violationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr), "expected *forms.ValidationError, got %v", err)
	fields := make(map[string]string, len(verr.Violations))
	for _, v := range verr.Violations {
		fields[v.Field] = v.Tag
	}
	return fields
}

func TestValidator_CreationForm(t *testing.T) {
	v := forms.NewValidator()

	valid := forms.UserCreationForm{Username: "bob", Password: "longenough1", Email: "b@x.com"}
	assert.NoError(t, v.Validate(valid))

	withMobile := valid
	withMobile.Mobile = "1234567890"
	assert.NoError(t, v.Validate(withMobile))
}

func TestValidator_ReportsAllViolations(t *testing.T) {
	v := forms.NewValidator()

	err := v.Validate(forms.UserCreationForm{Password: "short", Mobile: "12345", Email: "not-an-email"})
	fields := violationFields(t, err)

	assert.Equal(t, map[string]string{
		"username": "required",
		"password": "min",
		"mobile":   "len",
		"email":    "email",
	}, fields)
	assert.Contains(t, err.Error(), "Mobile number must be a 10-digit number")
	assert.Contains(t, err.Error(), "password must be at least 8 characters long")
}

func TestValidator_MobilePattern(t *testing.T) {
	v := forms.NewValidator()
	base := forms.UserCreationForm{Username: "bob", Password: "longenough1", Email: "b@x.com"}

	for _, mobile := range []string{"12345.6789", "+123456789", "abcdefghij", "12345678901"} {
		f := base
		f.Mobile = mobile
		fields := violationFields(t, v.Validate(f))
		assert.Contains(t, fields, "mobile", mobile)
	}
}

func TestValidator_UpdateFormAllOptional(t *testing.T) {
	v := forms.NewValidator()
	assert.NoError(t, v.Validate(forms.UserUpdateForm{}))

	fields := violationFields(t, v.Validate(forms.UserUpdateForm{Email: "nope"}))
	assert.Equal(t, map[string]string{"email": "email"}, fields)
}

func TestValidator_PasswordChangeForm(t *testing.T) {
	v := forms.NewValidator()
	assert.NoError(t, v.Validate(forms.PasswordChangeForm{Current: "old", Confirmation: "old", New: "newsecret1"}))

	fields := violationFields(t, v.Validate(forms.PasswordChangeForm{New: "short"}))
	assert.Equal(t, map[string]string{
		"current_password": "required",
		"confirm_password": "required",
		"new_password":     "min",
	}, fields)
}

func TestValidator_PasswordMustNotBeBlank(t *testing.T) {
	v := forms.NewValidator()

	fields := violationFields(t, v.Validate(forms.UserCreationForm{Username: "carl", Password: "          ", Email: "c@x.com"}))
	assert.Equal(t, map[string]string{"password": "notblank"}, fields)

	fields = violationFields(t, v.Validate(forms.PasswordChangeForm{Current: "old", Confirmation: "old", New: "\t\t        "}))
	assert.Equal(t, map[string]string{"new_password": "notblank"}, fields)

	assert.NoError(t, v.Validate(forms.UserCreationForm{Username: "carl", Password: " spaced secret ", Email: "c@x.com"}))
}

func TestValidator_PasswordLengthCountsBytes(t *testing.T) {
	v := forms.NewValidator()

	multibyte := strings.Repeat("ü", 40) // 40 runes, 80 bytes
	err := v.Validate(forms.UserCreationForm{Username: "carl", Password: multibyte, Email: "c@x.com"})
	assert.Equal(t, map[string]string{"password": "maxbytes"}, violationFields(t, err))
	assert.Contains(t, err.Error(), "password must be at most 72 bytes long")

	fields := violationFields(t, v.Validate(forms.PasswordChangeForm{Current: "old", Confirmation: "old", New: multibyte}))
	assert.Equal(t, map[string]string{"new_password": "maxbytes"}, fields)

	assert.NoError(t, v.Validate(forms.UserCreationForm{Username: "carl", Password: strings.Repeat("ü", 36), Email: "c@x.com"}))
}

func TestUserCreationForm_Normalize(t *testing.T) {
	f := forms.UserCreationForm{Username: "  bob ", DisplayName: "   ", Password: "  spaced  ", Email: " b@x.com"}
	f.Normalize()

	assert.Equal(t, "bob", f.Username)
	assert.Empty(t, f.DisplayName)
	assert.Equal(t, "  spaced  ", f.Password)
	assert.Equal(t, "b@x.com", f.Email)
}

func TestUserCreationForm_ToPatch(t *testing.T) {
	p := forms.UserCreationForm{Username: "bob", Password: "longenough1", Email: "b@x.com"}.ToPatch()

	assert.Equal(t, models.Some("bob"), p.Username)
	assert.Equal(t, models.Some("longenough1"), p.Password, "password stays raw until applied")
	assert.Equal(t, models.Some("b@x.com"), p.Email)
	assert.False(t, p.DisplayName.IsPresent())
	assert.False(t, p.Mobile.IsPresent())
	assert.False(t, p.ImageRef.IsPresent())
}

func TestUserUpdateForm_ToPatch(t *testing.T) {
	p := forms.UserUpdateForm{Mobile: "1234567890"}.ToPatch()

	assert.Equal(t, models.Some("1234567890"), p.Mobile)
	assert.False(t, p.Username.IsPresent())
	assert.False(t, p.Email.IsPresent())
	assert.False(t, p.Password.IsPresent())
}

func TestFromUser(t *testing.T) {
	u := &models.User{
		ID:          4,
		Username:    "bob",
		DisplayName: "Bobby",
		Password:    "$2a$04$storedhash",
		Mobile:      "1234567890",
		Email:       "b@x.com",
	}

	form := forms.FromUser(u)
	assert.Equal(t, forms.UserUpdateForm{Username: "bob", DisplayName: "Bobby", Mobile: "1234567890", Email: "b@x.com"}, form)

	patch := forms.PatchFromUser(u)
	assert.False(t, patch.Password.IsPresent())
	assert.Equal(t, models.Some("Bobby"), patch.DisplayName)
	assert.False(t, patch.ImageRef.IsPresent())
}

func TestBuildUser(t *testing.T) {
	m := credentials.NewManager(credentials.NewBcryptHasher(bcrypt.MinCost))

	u, err := forms.BuildUser(forms.UserCreationForm{Username: "bob", Password: "longenough1", Email: "b@x.com"}, m, clock)
	require.NoError(t, err)

	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, "bob", u.DisplayName)
	assert.Equal(t, "b@x.com", u.Email)
	assert.NotEqual(t, "longenough1", u.Password)
	assert.True(t, m.Verify("longenough1", u.Password))
	assert.Equal(t, fixedNow, u.CreatedAt)
	assert.False(t, u.IsActive)
	assert.False(t, u.IsDeleted)
	assert.NoError(t, u.CheckInvariants())
}

func TestBuildUser_KeepsDisplayName(t *testing.T) {
	m := credentials.NewManager(credentials.NewBcryptHasher(bcrypt.MinCost))

	u, err := forms.BuildUser(forms.UserCreationForm{Username: "alice", DisplayName: "Al", Password: "longenough1", Email: "a@x.com"}, m, clock)
	require.NoError(t, err)
	assert.Equal(t, "Al", u.DisplayName)
}

func TestBuildUser_RejectsPrehashedPassword(t *testing.T) {
	m := credentials.NewManager(credentials.NewBcryptHasher(bcrypt.MinCost))
	hashed, err := m.Hash("longenough1")
	require.NoError(t, err)

	_, err = forms.BuildUser(forms.UserCreationForm{Username: "bob", Password: hashed, Email: "b@x.com"}, m, clock)
	assert.ErrorIs(t, err, credentials.ErrAlreadyHashed)
}
