package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hashicorp/go-retryablehttp"
)

// maxFetchSize bounds what a gateway fetch will read.
const maxFetchSize = 32 << 20

// GatewayFetcher reads blobs through an HTTP gateway.
type GatewayFetcher struct {
	Gateway Gateway
	client  *retryablehttp.Client
}

// NewGatewayFetcher returns a fetcher that gives up on the gateway after
// timeout, retrying transient failures once.
func NewGatewayFetcher(base string, timeout time.Duration) *GatewayFetcher {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 1
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return &GatewayFetcher{Gateway: NewGateway(base), client: client}
}

func (g *GatewayFetcher) Fetch(ctx context.Context, id ContentID) ([]byte, error) {
	loc := g.Gateway.Resolve(id)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building gateway request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, model.Wrap(model.KindStoreUnavailable, err, fmt.Sprintf("gateway %s unreachable", g.Gateway.Base))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, model.Errorf(model.KindNotFound, "content '%s' not found at %s", id, g.Gateway.Base)
	default:
		return nil, model.Errorf(model.KindStoreUnavailable, "gateway %s answered %d for %s", g.Gateway.Base, resp.StatusCode, id)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, model.Wrap(model.KindStoreUnavailable, err, "reading gateway response")
	}
	return data, nil
}

func (g *GatewayFetcher) String() string {
	return g.Gateway.Base
}
