package playlist

import "errors"

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrPlaylistExists   = errors.New("playlist already imported")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrNotEnrolled      = errors.New("not enrolled in this playlist")
)
