package users

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userdesk/internal/platform/httpx"
)

func TestListUsersEmptyIsNotNil(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil, nil)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestCreateUserRequiresNameAndEmail(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CreateUser(context.Background(), NewUser{Name: "", Email: "b@x.com"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "name is required")

	_, err = svc.CreateUser(context.Background(), NewUser{Name: "Bo", Email: ""})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "email is required")

	assert.Empty(t, repo.users)
}

func TestCreateAndDeleteRecordMutations(t *testing.T) {
	recorder := &countingRecorder{}
	svc := NewService(&memoryRepo{}, nil, recorder, nil)

	user, err := svc.CreateUser(context.Background(), NewUser{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	assert.Equal(t, User{ID: 1, Name: "Ann", Email: "ann@x.com"}, user)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))
	assert.Equal(t, []string{"create", "delete"}, recorder.ops)
}

func TestDeleteMissingUserIsNotFound(t *testing.T) {
	recorder := &countingRecorder{}
	svc := NewService(&memoryRepo{}, nil, recorder, nil)

	err := svc.DeleteUser(context.Background(), 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, recorder.ops)
}

func TestListUsersServedFromCacheUntilMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryRepo{}
	svc := NewService(repo, NewListCache(client, time.Minute), nil, nil)
	ctx := context.Background()

	_, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	_, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls())

	_, err = svc.CreateUser(ctx, NewUser{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
	assert.Equal(t, []User{{ID: 1, Name: "Ann", Email: "ann@x.com"}}, users)
}

func TestListUsersFallsBackWhenCacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	repo := &memoryRepo{users: []User{{ID: 1, Name: "Ann", Email: "ann@x.com"}}, nextID: 1}
	svc := NewService(repo, NewListCache(client, time.Minute), nil, nil)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, repo.calls())
}

func TestListUsersPropagatesStorageError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryRepo{failWith: errStorage}
	svc := NewService(repo, NewListCache(client, time.Minute), nil, nil)

	_, err := svc.ListUsers(context.Background())
	require.ErrorIs(t, err, errStorage)
	assert.Equal(t, 1, repo.calls())
}

func TestCreateDuringRedisOutageVisibleAfterRecovery(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryRepo{}
	svc := NewService(repo, NewListCache(client, time.Minute), nil, nil)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	mr.SetError("LOADING redis blip")
	created, err := svc.CreateUser(ctx, NewUser{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []User{created}, users)

	mr.SetError("")
	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []User{created}, users)

	ver, err := mr.Get(listVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", ver)
}
