package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "calendar", nil)
	ctx := context.Background()

	var dest map[string]int
	err := repo.Get(ctx, "summary:2026-01", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	require.NoError(t, repo.Set(ctx, "summary:2026-01", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "summary:*"))
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Close())
}

func TestCacheRepositoryKeyPrefix(t *testing.T) {
	assert.Equal(t, "calendar:summary:2026-01", NewCacheRepository(nil, "calendar", nil).key("summary:2026-01"))
	assert.Equal(t, "summary:2026-01", NewCacheRepository(nil, "", nil).key("summary:2026-01"))
}
