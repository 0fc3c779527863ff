package video

import "errors"

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrVideoExists   = errors.New("video already exists in this playlist")
	ErrEmptyTitle    = errors.New("title cannot be empty")
)
