package filesvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	conf.Media.Root = t.TempDir()
	store := NewLocalStorage(conf)

	url, err := store.Save(ctx, "clubs/abc", "logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/media/clubs/abc/logo.png", url)

	content, err := os.ReadFile(filepath.Join(conf.Media.Root, "clubs", "abc", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	// path traversal stays in the root
	url, err = store.Save(ctx, "../../etc", "../passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/media/etc/passwd", url)

	require.NoError(t, store.Delete(ctx, "/media/clubs/abc/logo.png"))
	_, err = os.Stat(filepath.Join(conf.Media.Root, "clubs", "abc", "logo.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "/media/clubs/abc/logo.png"), "deleting a missing file is a no-op")

	assert.Equal(t, errOutsideRoot, store.Delete(ctx, "https://cdn.example.com/logo.png"))
	assert.Equal(t, errOutsideRoot, store.Delete(ctx, "/media/../secret"))
}
