package registry

import "errors"

// Ошибки реестра.
var (
	// ErrTaskNotFound — задача не найдена в реестре.
	ErrTaskNotFound = errors.New("task not found")
)
