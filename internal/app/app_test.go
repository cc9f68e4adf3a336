package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/config"
	"jjc-attendance/internal/httpmiddleware"
)

func memoryConfig() config.App {
	return config.App{
		Env:             "test",
		StorageBackend:  "memory",
		QueueBackend:    "memory",
		SummaryCacheTTL: time.Minute,
		Timezone:        "UTC",
		AdminSecret:     "s3cret",
	}
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, memoryConfig())
	require.NoError(t, err)
	defer rt.Close()

	assert.True(t, rt.Redis.Embedded())
	assert.Nil(t, rt.DB)

	checks := rt.Checks()
	require.Len(t, checks, 1)
	assert.Equal(t, "redis", checks[0].Name)
	assert.NoError(t, checks[0].Check(ctx))

	u, err := rt.Users.Register(ctx, "s3cret", "Andi", "andi@example.com", "pw", "")
	require.NoError(t, err)

	res, err := rt.Summary.SummarizeMine(ctx, &auth.Identity{ID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, res)

	id := u.Identity()
	_, err = rt.Attendance.CheckIn(ctx, &id, "photo")
	require.Error(t, err)
	if !apperror.IsKind(err, apperror.Policy) {
		// inside the check-in window the missing archiver is reported
		assert.Equal(t, "attendance.archiveUnavailable", apperror.KeyOf(err, ""))
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.StorageBackend = "sqlite"
	_, err := Open(context.Background(), cfg)
	assert.ErrorContains(t, err, `unknown STORAGE_BACKEND "sqlite"`)
}

func TestLimiterBackend(t *testing.T) {
	rt, err := Open(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer rt.Close()

	cases := []struct {
		backend string
		perMin  int
		want    any
	}{
		{"", 60, &httpmiddleware.RedisWindow{}},
		{"redis", 60, &httpmiddleware.RedisWindow{}},
		{"memory", 60, &httpmiddleware.SimpleTokenBucket{}},
		{"off", 60, nil},
		{"redis", 0, nil},
	}
	for _, tc := range cases {
		rt.Config.RateLimitBackend = tc.backend
		rt.Config.RateLimitPerMin = tc.perMin
		l, err := rt.Limiter()
		require.NoError(t, err, tc.backend)
		if tc.want == nil {
			assert.Nil(t, l, tc.backend)
			continue
		}
		assert.IsType(t, tc.want, l, tc.backend)
	}

	rt.Config.RateLimitBackend = "memory"
	rt.Config.RateLimitPerMin = 1
	l, err := rt.Limiter()
	require.NoError(t, err)
	ok, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = l.Allow(context.Background(), "10.0.0.1")
	assert.False(t, ok)

	rt.Config.RateLimitBackend = "memcached"
	_, err = rt.Limiter()
	assert.ErrorContains(t, err, `unknown RATE_LIMIT_BACKEND "memcached"`)
}
