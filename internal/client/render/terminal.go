// Package render draws the users page to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/odyssey-erp/userdesk/internal/client/models"
	"github.com/odyssey-erp/userdesk/internal/client/viewmodel"
)

// Terminal re-renders the users page whenever one of its signals changes.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	unsubs []func()
}

// NewTerminal returns a renderer writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Bind subscribes the renderer to page.
func (t *Terminal) Bind(page *viewmodel.UsersPage) {
	t.unsubs = append(t.unsubs,
		page.Users.Subscribe(t.Users),
		page.Name.Subscribe(func(name string) { t.Field("name", name) }),
		page.Email.Subscribe(func(email string) { t.Field("email", email) }),
	)
}

// Close removes every subscription made by Bind.
func (t *Terminal) Close() {
	for _, unsubscribe := range t.unsubs {
		unsubscribe()
	}
	t.unsubs = nil
}

// Users draws the user list.
func (t *Terminal) Users(users []models.User) {
	var b strings.Builder
	b.WriteString("User Management\n")
	if len(users) == 0 {
		b.WriteString("  (no users)\n")
	}
	for _, u := range users {
		fmt.Fprintf(&b, "  ID: %d - Name: %s - Email: %s\n", u.ID, u.Name, u.Email)
	}
	t.write(b.String())
}

// Field draws a form buffer.
func (t *Terminal) Field(label, value string) {
	t.write(fmt.Sprintf("%s: %q\n", label, value))
}

// Print writes a free-form line.
func (t *Terminal) Print(line string) {
	t.write(line + "\n")
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, s)
}
