package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes "not supplied" from any supplied value, including the zero value.
type Optional[T any] struct {
	value   T
	present bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, present: true} }

func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) { return o.value, o.present }

func (o Optional[T]) IsPresent() bool { return o.present }

// OrElse returns the value when present, fallback otherwise.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// UserPatch carries the user fields supplied by a create or update request.
// Password is the raw secret; it is hashed only when applied through SetPassword.
type UserPatch struct {
	Username    Optional[string] `json:"username"`
	DisplayName Optional[string] `json:"displayname"`
	Password    Optional[string] `json:"-"`
	Mobile      Optional[string] `json:"mobile"`
	Email       Optional[string] `json:"email"`
	ImageRef    Optional[string] `json:"image"`
}

// Merge copies every supplied, non-empty profile field of p onto u.
// Password is never merged; use ChangePassword.
func (u *User) Merge(p UserPatch) {
	mergeString(&u.Username, p.Username)
	mergeString(&u.DisplayName, p.DisplayName)
	mergeString(&u.Mobile, p.Mobile)
	mergeString(&u.Email, p.Email)
	mergeString(&u.ImageRef, p.ImageRef)
}

// An explicitly empty value counts as not supplied, so fields cannot be cleared through Merge.
func mergeString(dst *string, src Optional[string]) {
	if v, ok := src.Get(); ok && v != "" {
		*dst = v
	}
}
