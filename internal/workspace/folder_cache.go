package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"eventexport/internal/constants"
	"eventexport/internal/logger"
	"eventexport/pkg/metrics"
)

// FolderStore is the uncached source of folder permissions.
type FolderStore interface {
	CheckFolderPermission(ctx context.Context, workspaceID, userID, folderID, permission string) error
	ReadableFolderIDs(ctx context.Context, workspaceID, userID string) ([]string, error)
}

// CachedFolderAccess caches readable folder sets in Redis. Permission checks on
// a single folder always go to the store. Redis failures fall back to the
// store and are never surfaced to the caller.
type CachedFolderAccess struct {
	store  FolderStore
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedFolderAccess(store FolderStore, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedFolderAccess {
	return &CachedFolderAccess{
		store:  store,
		client: client,
		ttl:    ttl,
		logger: log.With("component", "folder_cache"),
	}
}

func folderCacheKey(workspaceID, userID string) string {
	return constants.CacheKeyPrefixFolders + workspaceID + ":" + userID
}

func (c *CachedFolderAccess) CheckFolderPermission(ctx context.Context, workspaceID, userID, folderID, permission string) error {
	return c.store.CheckFolderPermission(ctx, workspaceID, userID, folderID, permission)
}

func (c *CachedFolderAccess) ReadableFolderIDs(ctx context.Context, workspaceID, userID string) ([]string, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.store.ReadableFolderIDs(ctx, workspaceID, userID)
	}

	key := folderCacheKey(workspaceID, userID)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var ids []string
		if jsonErr := json.Unmarshal([]byte(val), &ids); jsonErr == nil {
			metrics.IncFolderCacheRequest("hit")
			return ids, nil
		}
		c.logger.WarnwCtx(ctx, "Discarding malformed folder cache entry", "key", key)
		metrics.IncFolderCacheRequest("miss")
	case errors.Is(err, redis.Nil):
		metrics.IncFolderCacheRequest("miss")
	default:
		c.logger.WarnwCtx(ctx, "Folder cache read failed, querying store", "error", err, "key", key)
		metrics.IncFolderCacheRequest("error")
	}

	ids, err := c.store.ReadableFolderIDs(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ids)
	if err == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.WarnwCtx(ctx, "Folder cache write failed", "error", setErr, "key", key)
		}
	}

	return ids, nil
}

// Invalidate drops the cached folder set for a user.
func (c *CachedFolderAccess) Invalidate(ctx context.Context, workspaceID, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, folderCacheKey(workspaceID, userID)).Err()
}
