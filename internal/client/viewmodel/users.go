// Package viewmodel keeps the client mirror of the user store and drives the
// remote operations that reconcile it.
package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/odyssey-erp/userdesk/internal/client/models"
	"github.com/odyssey-erp/userdesk/internal/client/reactive"
	"github.com/odyssey-erp/userdesk/internal/client/scheduler"
)

// ErrEmptyFields is logged when a create is attempted with a blank buffer.
var ErrEmptyFields = errors.New("name and email cannot be empty")

const loadKey = "load"

// Store is the remote user store as seen by the view-model.
type Store interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, candidate models.User) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// UsersPage is the view-model of the user management page. Its signals are
// only mutated on the scheduler loop; every method may be called from any
// goroutine and returns without waiting for the remote call.
type UsersPage struct {
	Users *reactive.Signal[[]models.User]
	Name  *reactive.Signal[string]
	Email *reactive.Signal[string]

	store     Store
	loop      *scheduler.Loop
	logger    *slog.Logger
	activated bool
}

// NewUsersPage builds a page bound to store and loop.
func NewUsersPage(store Store, loop *scheduler.Loop, logger *slog.Logger) *UsersPage {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsersPage{
		Users:  reactive.New([]models.User{}),
		Name:   reactive.New(""),
		Email:  reactive.New(""),
		store:  store,
		loop:   loop,
		logger: logger,
	}
}

// Activate performs the initial load the first time it is called.
func (p *UsersPage) Activate() {
	p.loop.Post(func() {
		if p.activated {
			return
		}
		p.activated = true
		p.spawnLoad()
	})
}

// Reload fetches the list again, superseding any load still in flight.
func (p *UsersPage) Reload() {
	p.loop.Post(p.spawnLoad)
}

// CancelLoad abandons a list load still in flight. The mirror keeps its
// current contents.
func (p *UsersPage) CancelLoad() {
	p.loop.Post(func() { p.loop.Cancel(loadKey) })
}

// SetName updates the name buffer.
func (p *UsersPage) SetName(name string) {
	p.loop.Post(func() { p.Name.Set(name) })
}

// SetEmail updates the email buffer.
func (p *UsersPage) SetEmail(email string) {
	p.loop.Post(func() { p.Email.Set(email) })
}

// Submit creates a user from the current buffers. Blank buffers abort the
// operation locally without contacting the store.
func (p *UsersPage) Submit() {
	p.loop.Post(func() {
		name, email := p.Name.Get(), p.Email.Get()
		if name == "" || email == "" {
			p.logger.Error("create user aborted", slog.String("op", "create"), slog.Any("error", ErrEmptyFields))
			return
		}
		candidate := models.User{ID: 0, Name: name, Email: email}
		p.loop.Spawn("", func(ctx context.Context) func() {
			created, err := p.store.Create(ctx, candidate)
			if err != nil {
				p.logFailure(ctx, "create", err)
				return nil
			}
			return func() {
				p.Users.Update(func(users []models.User) []models.User {
					return append(slices.Clip(users), created)
				})
				p.Name.Set("")
				p.Email.Set("")
				p.refreshStaleLoad()
			}
		})
	})
}

// Delete removes the user with id once the store confirms it.
func (p *UsersPage) Delete(id int64) {
	p.loop.Post(func() {
		p.loop.Spawn("", func(ctx context.Context) func() {
			if err := p.store.Delete(ctx, id); err != nil {
				p.logFailure(ctx, "delete", err, slog.Int64("id", id))
				return nil
			}
			return func() {
				p.Users.Update(func(users []models.User) []models.User {
					return slices.DeleteFunc(slices.Clone(users), func(u models.User) bool { return u.ID == id })
				})
				p.refreshStaleLoad()
			}
		})
	})
}

func (p *UsersPage) spawnLoad() {
	p.loop.Spawn(loadKey, func(ctx context.Context) func() {
		users, err := p.store.List(ctx)
		if err != nil {
			p.logFailure(ctx, "load", err)
			return nil
		}
		return func() { p.Users.Set(users) }
	})
}

// refreshStaleLoad restarts a list load that was issued before the mutation
// just confirmed, so its older snapshot cannot overwrite the mirror.
func (p *UsersPage) refreshStaleLoad() {
	if p.loop.InFlight(loadKey) {
		p.spawnLoad()
	}
}

func (p *UsersPage) logFailure(ctx context.Context, op string, err error, attrs ...any) {
	if ctx.Err() != nil {
		p.logger.Debug("operation cancelled", slog.String("op", op))
		return
	}
	p.logger.Error("remote operation failed", append([]any{slog.String("op", op), slog.Any("error", err)}, attrs...)...)
}
