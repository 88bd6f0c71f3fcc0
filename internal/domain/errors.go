package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNameListMissing = errors.New("name list missing")
	ErrLockHeld        = errors.New("lock already held")
)
