package models

import (
	"time"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password"`
}

type Post struct {
	ID       int64     `json:"id" db:"id"`
	Title    string    `json:"title" db:"title"`
	Body     string    `json:"body" db:"body"`
	Created  time.Time `json:"created" db:"created"`
	AuthorID int64     `json:"authorId" db:"author_id"`
	// Username of the author, filled by queries that join users.
	Username string `json:"username" db:"username"`
}

type CreateUserRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type PostRequest struct {
	Title string `validate:"required"`
	Body  string
}
