package base

import "errors"

//ErrAlreadyLocked is returned when a lock is held by another session
var ErrAlreadyLocked = errors.New("lock is already held by another session")
