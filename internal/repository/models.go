package repository

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID              int64
	Title           string
	Author          string
	Source          string
	Url             string
	Summary         string
	Content         string
	Hits            int32
	MetaKeywords    string
	MetaDescription string
	CreationTime    time.Time
	PostTime        *time.Time
	IsDeleted       bool
	DeletedAt       *time.Time
}

type Post struct {
	ID           int64
	Title        string
	Author       string
	Url          string
	Content      string
	CreationTime time.Time
}

type User struct {
	ID         uuid.UUID
	Provider   string
	ExternalID string
	Login      string
	Name       string
	Email      string
	AvatarUrl  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
