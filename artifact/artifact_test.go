package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloWorldID = ContentID("bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e")

func TestComputeID(t *testing.T) {
	id, err := ComputeID([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, helloWorldID, id)

	again, err := ComputeID([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, err := ComputeID([]byte("hello world!"))
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestParseID(t *testing.T) {
	t.Run("cid v1", func(t *testing.T) {
		id, err := ParseID(" " + string(helloWorldID) + " ")
		require.NoError(t, err)
		assert.Equal(t, helloWorldID, id)
	})

	t.Run("cid v0", func(t *testing.T) {
		id, err := ParseID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
		require.NoError(t, err)
		assert.Equal(t, ContentID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"), id)
	})

	for _, bad := range []string{"", "Qm123", "not a cid", "bafy!"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, model.ErrInvalidInput, bad)
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(helloWorldID, []byte("hello world")))
	assert.False(t, Matches(helloWorldID, []byte("hello world!")))
	assert.False(t, Matches("not-a-cid", []byte("hello world")))
	// dag-pb roots cannot be checked from the bytes alone.
	assert.True(t, Matches("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", []byte("anything")))
}

func TestGatewayResolve(t *testing.T) {
	assert.Equal(t, Locator("https://ipfs.io/ipfs/Qm123"), NewGateway("").Resolve("Qm123"))
	assert.Equal(t, Locator("http://localhost:8080/ipfs/Qm123"), NewGateway("http://localhost:8080/ipfs/").Resolve("Qm123"))
	assert.Equal(t, Locator("https://ipfs.io/ipfs/Qm123"), Gateway{}.Resolve("Qm123"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Store(ctx, []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, helloWorldID, id)

	_, err = s.Store(ctx, []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	data, err := s.Fetch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	_, err = s.Fetch(ctx, "bafkreiunknown")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "blobs")

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.DataDir())

	id, err := s.Store(ctx, []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, helloWorldID, id)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may remain")
	assert.Equal(t, string(helloWorldID), entries[0].Name())

	data, err := s.Fetch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	t.Run("missing content", func(t *testing.T) {
		missing, err := ComputeID([]byte("never stored"))
		require.NoError(t, err)
		_, err = s.Fetch(ctx, missing)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("corrupt content", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(id)), []byte("tampered"), 0o600))
		_, err := s.Fetch(ctx, id)
		assert.Error(t, err)
	})
}

type failingStore struct{ err error }

func (f failingStore) Store(context.Context, []byte) (ContentID, error) { return "", f.err }

func TestStoreOrDegrade(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy store", func(t *testing.T) {
		res, err := StoreOrDegrade(ctx, NewMemoryStore(), []byte("hello world"))
		require.NoError(t, err)
		assert.False(t, res.Degraded)
		assert.Nil(t, res.Cause)
		assert.Equal(t, helloWorldID, res.ID)
	})

	t.Run("unavailable store degrades", func(t *testing.T) {
		cause := model.Wrap(model.KindStoreUnavailable, errors.New("connection refused"), "ipfs add failed")
		res, err := StoreOrDegrade(ctx, failingStore{err: cause}, []byte("hello world"))
		require.NoError(t, err)
		assert.True(t, res.Degraded)
		assert.Equal(t, helloWorldID, res.ID)
		assert.ErrorIs(t, res.Cause, model.ErrStoreUnavailable)
	})

	t.Run("other failures are returned", func(t *testing.T) {
		_, err := StoreOrDegrade(ctx, failingStore{err: context.Canceled}, []byte("x"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
