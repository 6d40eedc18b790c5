package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("diplomacert.metadata")

// Status of a metadata lookup.
type Status string

const (
	// StatusResolved means a valid document was fetched.
	StatusResolved Status = "resolved"
	// StatusMissing means no fetcher could produce the content, e.g. the
	// artifact was issued while the blob store was down.
	StatusMissing Status = "missing"
	// StatusInvalid means content was fetched but is not a valid document.
	StatusInvalid Status = "invalid"
)

// Resolution is the outcome of Resolver.Resolve. FileStatus and FileReason
// describe the certificate file the document points at and are only set by
// ResolveWithFile.
type Resolution struct {
	ContentID  artifact.ContentID `json:"contentId"`
	Document   *Document          `json:"document,omitempty"`
	Status     Status             `json:"status"`
	Reason     string             `json:"reason,omitempty"`
	FileStatus Status             `json:"fileStatus,omitempty"`
	FileReason string             `json:"fileReason,omitempty"`
}

// Resolver fetches metadata documents, trying each fetcher in order and
// caching decoded documents.
type Resolver struct {
	fetchers []artifact.Fetcher
	timeout  time.Duration
	cache    *expirable.LRU[artifact.ContentID, *Document]
	files    *expirable.LRU[artifact.ContentID, struct{}]
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Per-fetcher deadline. Zero means no deadline beyond the caller's context.
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

func NewResolver(opts ResolverOptions, fetchers ...artifact.Fetcher) *Resolver {
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		fetchers: fetchers,
		timeout:  opts.Timeout,
		cache:    expirable.NewLRU[artifact.ContentID, *Document](size, nil, ttl),
		files:    expirable.NewLRU[artifact.ContentID, struct{}](size, nil, ttl),
	}
}

// Resolve never fails: unreachable or malformed documents are reported
// through the Resolution status.
func (r *Resolver) Resolve(ctx context.Context, id artifact.ContentID) Resolution {
	if doc, ok := r.cache.Get(id); ok {
		return Resolution{ContentID: id, Document: doc, Status: StatusResolved}
	}

	var lastErr error
	for _, f := range r.fetchers {
		data, err := r.fetch(ctx, f, id)
		if err != nil {
			logger.Debugf("Metadata %s not available from %v: %v", id, f, err)
			lastErr = err
			continue
		}
		doc, err := Decode(data)
		if err != nil {
			logger.Warningf("Metadata %s is not a valid document: %v", id, err)
			return Resolution{ContentID: id, Status: StatusInvalid, Reason: err.Error()}
		}
		r.cache.Add(id, doc)
		return Resolution{ContentID: id, Document: doc, Status: StatusResolved}
	}

	reason := "no fetcher configured"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	return Resolution{ContentID: id, Status: StatusMissing, Reason: reason}
}

// ResolveWithFile resolves the document and then checks that the
// certificate file it names can be fetched and matches its hash. A file
// stored in degraded mode shows up here as FileStatus missing while the
// document itself resolves.
func (r *Resolver) ResolveWithFile(ctx context.Context, id artifact.ContentID) Resolution {
	res := r.Resolve(ctx, id)
	if res.Status != StatusResolved {
		return res
	}
	res.FileStatus, res.FileReason = r.checkFile(ctx, res.Document.FileHash)
	return res
}

func (r *Resolver) checkFile(ctx context.Context, hash string) (Status, string) {
	fileID, err := artifact.ParseID(hash)
	if err != nil {
		return StatusInvalid, err.Error()
	}
	if _, ok := r.files.Get(fileID); ok {
		return StatusResolved, ""
	}

	var lastErr error
	for _, f := range r.fetchers {
		data, err := r.fetch(ctx, f, fileID)
		if err != nil {
			lastErr = err
			continue
		}
		if !artifact.Matches(fileID, data) {
			logger.Warningf("Certificate file %s does not match its content id", fileID)
			return StatusInvalid, fmt.Sprintf("content of %s does not match its hash", fileID)
		}
		r.files.Add(fileID, struct{}{})
		return StatusResolved, ""
	}

	logger.Debugf("Certificate file %s not available: %v", fileID, lastErr)
	if lastErr == nil {
		return StatusMissing, "no fetcher configured"
	}
	return StatusMissing, lastErr.Error()
}

func (r *Resolver) fetch(ctx context.Context, f artifact.Fetcher, id artifact.ContentID) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	data, err := f.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.Wrap(model.KindStoreUnavailable, err, fmt.Sprintf("fetching %s timed out", id))
		}
		return nil, err
	}
	return data, nil
}

// Forget drops id from the caches.
func (r *Resolver) Forget(id artifact.ContentID) {
	r.cache.Remove(id)
	r.files.Remove(id)
}
