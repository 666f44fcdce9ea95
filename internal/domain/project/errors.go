package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidPatch indicates a patch value outside the allowed set.
	ErrInvalidPatch = errors.New("invalid project patch")
)
