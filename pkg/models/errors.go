package models

import "errors"

// Storage sentinels shared by every store implementation.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrConditionFailed = errors.New("update condition not met")
)
