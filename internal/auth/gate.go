/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package auth gates edit mode behind a password. The password is kept only
// as a bcrypt hash.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrLocked is returned when the password does not unlock edit mode.
	ErrLocked = errors.New("edit mode locked")
	// ErrNoPassword is returned when no password hash is configured.
	ErrNoPassword = errors.New("no edit password configured")
)

// Gate tracks whether edit mode is unlocked. It is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	hash    []byte
	editing bool
}

// NewGate returns a locked gate for a bcrypt hash. An empty hash leaves the
// gate open: edit mode can be toggled without a password.
func NewGate(hash string) *Gate {
	return &Gate{hash: []byte(hash)}
}

// HashPassword returns the bcrypt hash to store for password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Protected reports whether a password is required.
func (g *Gate) Protected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.hash) > 0
}

// Unlock enables edit mode when password matches.
func (g *Gate) Unlock(password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
			return ErrLocked
		}
	}
	g.editing = true
	return nil
}

// Lock leaves edit mode.
func (g *Gate) Lock() {
	g.mu.Lock()
	g.editing = false
	g.mu.Unlock()
}

func (g *Gate) Editing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.editing
}

// Toggle leaves edit mode when editing, otherwise tries to unlock with
// password. It returns the new state.
func (g *Gate) Toggle(password string) (bool, error) {
	if g.Editing() {
		g.Lock()
		return false, nil
	}
	if err := g.Unlock(password); err != nil {
		return false, err
	}
	return true, nil
}

// SetPassword replaces the stored hash after checking the current password.
func (g *Gate) SetPassword(current, next string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(current)); err != nil {
			return "", ErrLocked
		}
	}
	h, err := HashPassword(next)
	if err != nil {
		return "", err
	}
	g.hash = []byte(h)
	return h, nil
}
