package artifact

import (
	"context"
	"errors"

	"github.com/HamzaTakiX/Blockchain-project/model"
)

// StoreResult is the outcome of StoreOrDegrade.
type StoreResult struct {
	ID ContentID
	// Degraded is set when the store was unreachable and ID was computed
	// locally. The content is not retrievable until the same bytes are
	// stored again.
	Degraded bool
	Cause    error
}

// StoreOrDegrade stores data, falling back to the locally computed id when
// the store is unavailable. Errors of any other kind are returned as is.
func StoreOrDegrade(ctx context.Context, store Store, data []byte) (StoreResult, error) {
	id, err := store.Store(ctx, data)
	if err == nil {
		return StoreResult{ID: id}, nil
	}
	if !errors.Is(err, model.ErrStoreUnavailable) {
		return StoreResult{}, err
	}

	local, cerr := ComputeID(data)
	if cerr != nil {
		return StoreResult{}, cerr
	}
	logger.Warningf("Blob store unavailable, continuing with unpinned content id %s: %v", local, err)
	return StoreResult{ID: local, Degraded: true, Cause: err}, nil
}
