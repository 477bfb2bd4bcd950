package model

import "errors"

var (
	ErrEmptyQuery       = errors.New("search query is required")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrNotFound         = errors.New("not found")
)
