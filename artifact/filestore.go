package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/google/uuid"
)

// FileStore keeps one file per blob under a data directory, named by
// content id.
type FileStore struct {
	dataDir string
}

// NewFileStore creates the data directory if it does not exist.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, model.Wrap(model.KindStoreUnavailable, err, fmt.Sprintf("cannot create data directory %s", dataDir))
	}
	return &FileStore{dataDir: dataDir}, nil
}

// Store writes data via temp file, fsync and atomic rename. Storing bytes
// that are already present is a no-op.
func (fs *FileStore) Store(ctx context.Context, data []byte) (ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := ComputeID(data)
	if err != nil {
		return "", err
	}
	fullPath := fs.path(id)
	if _, err := os.Stat(fullPath); err == nil {
		return id, nil
	}

	tmpPath := fullPath + "." + uuid.NewString()[:8] + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", model.Wrap(model.KindStoreUnavailable, err, "cannot create temp file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", model.Wrap(model.KindStoreUnavailable, err, "write failed")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", model.Wrap(model.KindStoreUnavailable, err, "fsync failed")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", model.Wrap(model.KindStoreUnavailable, err, "close failed")
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", model.Wrap(model.KindStoreUnavailable, err, "atomic rename failed")
	}

	logger.Debugf("Stored %d bytes as %s in %s", len(data), id, fs.dataDir)
	return id, nil
}

// Fetch reads a blob and checks that its bytes still hash to id.
func (fs *FileStore) Fetch(ctx context.Context, id ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := ParseID(string(id))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fs.path(parsed))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.Errorf(model.KindNotFound, "content '%s' not found", id)
		}
		return nil, model.Wrap(model.KindStoreUnavailable, err, fmt.Sprintf("cannot read %s", id))
	}
	sum, err := ComputeID(data)
	if err != nil {
		return nil, err
	}
	if sum != parsed {
		return nil, fmt.Errorf("content '%s' is corrupt on disk (hashes to %s)", id, sum)
	}
	return data, nil
}

// DataDir returns the data directory.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

func (fs *FileStore) path(id ContentID) string {
	return filepath.Join(fs.dataDir, filepath.Base(string(id)))
}
