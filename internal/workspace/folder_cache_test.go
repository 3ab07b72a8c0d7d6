package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventexport/internal/logger"
)

type fakeFolderStore struct {
	ids       []string
	err       error
	readCalls int
	checks    []string
}

func (s *fakeFolderStore) CheckFolderPermission(ctx context.Context, workspaceID, userID, folderID, permission string) error {
	s.checks = append(s.checks, folderID+":"+permission)
	return s.err
}

func (s *fakeFolderStore) ReadableFolderIDs(ctx context.Context, workspaceID, userID string) ([]string, error) {
	s.readCalls++
	return s.ids, s.err
}

// unreachableRedis points at a closed port so every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestFolderCacheKey(t *testing.T) {
	assert.Equal(t, "export:folders:ws_1:user_1", folderCacheKey("ws_1", "user_1"))
}

func TestCachedFolderAccess_DisabledCache(t *testing.T) {
	store := &fakeFolderStore{ids: []string{"fold_a"}}
	access := NewCachedFolderAccess(store, nil, time.Minute, logger.NopLogger())

	ids, err := access.ReadableFolderIDs(context.Background(), "ws_1", "user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fold_a"}, ids)
	assert.Equal(t, 1, store.readCalls)
	assert.NoError(t, access.Invalidate(context.Background(), "ws_1", "user_1"))
}

func TestCachedFolderAccess_RedisFailureFallsBackToStore(t *testing.T) {
	store := &fakeFolderStore{ids: []string{"fold_a", "fold_b"}}
	access := NewCachedFolderAccess(store, unreachableRedis(t), time.Minute, logger.NopLogger())

	ids, err := access.ReadableFolderIDs(context.Background(), "ws_1", "user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fold_a", "fold_b"}, ids)
	assert.Equal(t, 1, store.readCalls)
}

func TestCachedFolderAccess_StoreErrorPropagates(t *testing.T) {
	store := &fakeFolderStore{err: errors.New("db down")}
	access := NewCachedFolderAccess(store, unreachableRedis(t), time.Minute, logger.NopLogger())

	_, err := access.ReadableFolderIDs(context.Background(), "ws_1", "user_1")
	assert.ErrorContains(t, err, "db down")
}

func TestCachedFolderAccess_PermissionCheckBypassesCache(t *testing.T) {
	store := &fakeFolderStore{}
	access := NewCachedFolderAccess(store, unreachableRedis(t), time.Minute, logger.NopLogger())

	err := access.CheckFolderPermission(context.Background(), "ws_1", "user_1", "fold_a", "folders.read")
	require.NoError(t, err)
	assert.Equal(t, []string{"fold_a:folders.read"}, store.checks)
}
