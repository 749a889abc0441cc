/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func TestGateUnlock(t *testing.T) {
	g := NewGate(testHash(t, "secret"))
	if !g.Protected() || g.Editing() {
		t.Fatalf("new gate should be protected and locked")
	}
	if err := g.Unlock("wrong"); !errors.Is(err, ErrLocked) {
		t.Fatalf("Unlock wrong err = %v, want ErrLocked", err)
	}
	if g.Editing() {
		t.Fatalf("wrong password must not unlock")
	}
	if err := g.Unlock("secret"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if !g.Editing() {
		t.Fatalf("expected editing after unlock")
	}
	g.Lock()
	if g.Editing() {
		t.Fatalf("expected locked")
	}
}

func TestGateToggle(t *testing.T) {
	g := NewGate(testHash(t, "pw"))
	if on, err := g.Toggle("nope"); on || !errors.Is(err, ErrLocked) {
		t.Fatalf("Toggle wrong = %v, %v", on, err)
	}
	if on, err := g.Toggle("pw"); !on || err != nil {
		t.Fatalf("Toggle right = %v, %v", on, err)
	}
	if on, err := g.Toggle(""); on || err != nil {
		t.Fatalf("Toggle off = %v, %v", on, err)
	}
}

func TestOpenGate(t *testing.T) {
	g := NewGate("")
	if g.Protected() {
		t.Fatalf("empty hash should not be protected")
	}
	if err := g.Unlock(""); err != nil {
		t.Fatalf("Unlock open gate: %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	g := NewGate(testHash(t, "old"))
	if _, err := g.SetPassword("bad", "new"); !errors.Is(err, ErrLocked) {
		t.Fatalf("SetPassword with bad current err = %v", err)
	}
	h, err := g.SetPassword("old", "new")
	if err != nil || h == "" {
		t.Fatalf("SetPassword: %q %v", h, err)
	}
	if err := g.Unlock("new"); err != nil {
		t.Fatalf("Unlock new: %v", err)
	}
	if _, err := HashPassword(""); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("HashPassword empty err = %v", err)
	}
}
