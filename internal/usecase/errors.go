package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNotFound is returned when no user holds the requested login identifier.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// UnresolvedRolesError lists submitted role names that match no stored role.
type UnresolvedRolesError struct {
	Names []string
}

func (e *UnresolvedRolesError) Error() string {
	return fmt.Sprintf("unknown roles: %s", strings.Join(e.Names, ", "))
}
