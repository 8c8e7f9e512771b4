package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s FileStorage, baseURL string) {
	t.Helper()
	ctx := context.Background()

	key, err := s.Upload(ctx, strings.NewReader("<html></html>"), "payslips/EMP-1/payslip-EMP-1-2024-06.html", "text/html")
	require.NoError(t, err)
	assert.Equal(t, "payslips/EMP-1/payslip-EMP-1-2024-06.html", key)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "<html></html>", string(body))

	url, err := s.GetURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/"+key, url)

	// Overwrite keeps one file.
	_, err = s.Upload(ctx, strings.NewReader("v2"), key, "text/html")
	require.NoError(t, err)
	rc, err = s.Download(ctx, key)
	require.NoError(t, err)
	body, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "v2", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Upload(ctx, strings.NewReader("x"), "../escape.html", "text/html")
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = s.Download(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)
	exerciseStorage(t, s, "http://localhost:8080/files")
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage("mem://files")
	exerciseStorage(t, s, "mem://files")

	_, err := s.Upload(context.Background(), strings.NewReader("%PDF"), "a/b.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", s.ContentType("a/b.pdf"))
}
