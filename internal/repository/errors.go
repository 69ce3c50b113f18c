package repository

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrCacheMiss = errors.New("cache miss")
	// ErrConflict is returned when a snapshot kept changing underneath an update.
	ErrConflict = errors.New("concurrent update, retry later")
)
