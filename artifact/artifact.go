// Package artifact stores certificate files and metadata documents in a
// content-addressed blob store and turns their identifiers into retrieval
// locators.
package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric/common/flogging"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var logger = flogging.MustGetLogger("diplomacert.artifact")

// DefaultGatewayBase is the public IPFS HTTP gateway.
const DefaultGatewayBase = "https://ipfs.io/ipfs"

// ContentID identifies a blob by its content.
type ContentID string

func (c ContentID) String() string { return string(c) }

// Locator is a retrieval URL for a blob.
type Locator string

func (l Locator) String() string { return string(l) }

// Store persists blobs. Implementations return an error of kind
// STORE_UNAVAILABLE when the backend cannot be reached.
type Store interface {
	Store(ctx context.Context, data []byte) (ContentID, error)
}

// Fetcher retrieves blobs. Unknown content yields an error of kind NOT_FOUND.
type Fetcher interface {
	Fetch(ctx context.Context, id ContentID) ([]byte, error)
}

// StoreFetcher is a backend that can do both.
type StoreFetcher interface {
	Store
	Fetcher
}

// MaxBlockSize is the largest blob that can be stored. Every blob is a
// single raw block, which Kubo caps at 1 MiB; larger data would be chunked
// into a DAG whose root id differs from ComputeID.
const MaxBlockSize = 1 << 20

var rawPrefix = cid.NewPrefixV1(cid.Raw, multihash.SHA2_256)

// ComputeID returns the CIDv1 (raw codec, sha2-256) of data. Equal bytes
// always yield the same identifier, and it is the id every Store returns
// for them. Data over MaxBlockSize is rejected.
func ComputeID(data []byte) (ContentID, error) {
	if len(data) > MaxBlockSize {
		return "", model.Errorf(model.KindInvalidInput, "blob of %d bytes exceeds the %d byte block limit", len(data), MaxBlockSize)
	}
	c, err := rawPrefix.Sum(data)
	if err != nil {
		return "", fmt.Errorf("computing content id: %w", err)
	}
	return ContentID(c.String()), nil
}

// ParseID validates a content identifier (CIDv0 or CIDv1) and returns it in
// its canonical string form.
func ParseID(s string) (ContentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", model.Errorf(model.KindInvalidInput, "content id is empty")
	}
	c, err := cid.Decode(s)
	if err != nil {
		return "", model.Wrap(model.KindInvalidInput, err, fmt.Sprintf("invalid content id '%s'", s))
	}
	return ContentID(c.String()), nil
}

// Matches reports whether data hashes to id. Only raw-codec ids can be
// checked from the bytes alone; other ids are taken on trust.
func Matches(id ContentID, data []byte) bool {
	c, err := cid.Decode(string(id))
	if err != nil {
		return false
	}
	if c.Type() != cid.Raw {
		return true
	}
	sum, err := c.Prefix().Sum(data)
	return err == nil && sum.Equals(c)
}

// Gateway resolves content ids against an HTTP gateway base.
type Gateway struct {
	Base string
}

// NewGateway returns a Gateway for base, or the public gateway when base is empty.
func NewGateway(base string) Gateway {
	if strings.TrimSpace(base) == "" {
		base = DefaultGatewayBase
	}
	return Gateway{Base: strings.TrimRight(strings.TrimSpace(base), "/")}
}

// Resolve returns {base}/{id}. It does not touch the network.
func (g Gateway) Resolve(id ContentID) Locator {
	base := strings.TrimRight(g.Base, "/")
	if base == "" {
		base = DefaultGatewayBase
	}
	return Locator(base + "/" + string(id))
}
