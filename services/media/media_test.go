package mediasvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "media"), "http://localhost:8000/media")
	require.NoError(t, err)

	src := filepath.Join(root, "avatar.PNG")
	require.NoError(t, os.WriteFile(src, []byte("not really a png"), 0o600))

	asset, err := store.Upload(ctx, core.Upload{Path: src, Filename: "avatar.PNG"}, core.ResourceImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(asset.PublicID, "images/"))
	assert.True(t, strings.HasSuffix(asset.PublicID, ".png"))
	assert.Equal(t, "http://localhost:8000/media/"+asset.PublicID, asset.URL)
	assert.Equal(t, int64(16), asset.Bytes)
	assert.Equal(t, core.ResourceImage, asset.ResourceType)

	stored := filepath.Join(store.Dir(), filepath.FromSlash(asset.PublicID))
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(content))

	require.NoError(t, store.Delete(ctx, asset.PublicID, core.ResourceImage))
	assert.NoFileExists(t, stored)
	// already gone
	assert.NoError(t, store.Delete(ctx, asset.PublicID, core.ResourceImage))

	assert.Equal(t, errInvalidPublicID, store.Delete(ctx, "../../etc/passwd", core.ResourceImage))
	assert.Equal(t, errInvalidPublicID, store.Delete(ctx, "", core.ResourceImage))
}

func TestLocalStore_MissingUpload(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), core.Upload{Path: "/does/not/exist.mp4", Filename: "exist.mp4"}, core.ResourceVideo)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{name: "ok", out: `{"format":{"filename":"a.mp4","duration":"12.480000"}}`, want: 12.48},
		{name: "no duration", out: `{"format":{}}`, wantErr: true},
		{name: "bad json", out: `nope`, wantErr: true},
		{name: "bad number", out: `{"format":{"duration":"N/A"}}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDuration([]byte(tc.out))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}
