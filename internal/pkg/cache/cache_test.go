package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v2"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	c := NewRedisCache(rdb)

	mock.ExpectGet("payroll:history:EMP-1").RedisNil()
	_, err := c.Get(ctx, "payroll:history:EMP-1")
	assert.ErrorIs(t, err, ErrMiss)

	mock.ExpectSet("payroll:history:EMP-1", []byte("[]"), time.Hour).SetVal("OK")
	require.NoError(t, c.Set(ctx, "payroll:history:EMP-1", []byte("[]"), time.Hour))

	mock.ExpectGet("payroll:history:EMP-1").SetVal("[]")
	got, err := c.Get(ctx, "payroll:history:EMP-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), got)

	mock.ExpectDel("payroll:history:EMP-1").SetErr(errors.New("connection reset"))
	err = c.Delete(ctx, "payroll:history:EMP-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}
