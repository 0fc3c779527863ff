package assignment

import "errors"

var ErrTitleRequired = errors.New("video title is required")
