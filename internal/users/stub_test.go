package users

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/odyssey-erp/userdesk/internal/platform/httpx"
)

// memoryRepo is an in-memory RepositoryPort for tests.
type memoryRepo struct {
	mu        sync.Mutex
	nextID    int64
	users     []User
	listCalls int
	failWith  error
}

func (r *memoryRepo) ListUsers(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *memoryRepo) CreateUser(ctx context.Context, input NewUser) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return User{}, r.failWith
	}
	r.nextID++
	user := User{ID: r.nextID, Name: input.Name, Email: input.Email}
	r.users = append(r.users, user)
	return user, nil
}

func (r *memoryRepo) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
}

func (r *memoryRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

var errStorage = errors.New("database error: connection refused")

type countingRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (c *countingRecorder) RecordUserMutation(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
}
