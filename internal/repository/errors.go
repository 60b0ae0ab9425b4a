// Package repository implements MySQL persistence for users, refresh tokens,
// teacher profiles, classes, RSVPs and the audit log. Sentinel errors let
// higher layers distinguish failure scenarios without inspecting SQL errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert violates the unique email key.
var ErrEmailExists = errors.New("email already exists")
