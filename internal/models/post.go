package models

import "time"

// Post is a piece of content authored by a user.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"type:varchar(200)" validate:"required,min=1,max=200"`
	Body      string    `json:"body" gorm:"type:text" validate:"omitempty,max=5000"`
	CreatedAt time.Time `json:"created_at"`
}

func (Post) TableName() string { return "posts" }
