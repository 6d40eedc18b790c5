package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultKuboAPI is the RPC endpoint of a local Kubo daemon.
const DefaultKuboAPI = "http://127.0.0.1:5001"

// KuboConfig configures a KuboStore.
type KuboConfig struct {
	APIURL       string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// KuboStore talks to the RPC API of an IPFS Kubo node. Blobs are written
// as single pinned raw blocks, so the id Kubo assigns is always ComputeID
// of the bytes.
type KuboStore struct {
	api    string
	client *retryablehttp.Client
}

type kuboBlockPutResponse struct {
	Key  string `json:"Key"`
	Size int64  `json:"Size"`
}

type kuboErrorResponse struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

func NewKuboStore(cfg KuboConfig) *KuboStore {
	api := strings.TrimRight(cfg.APIURL, "/")
	if api == "" {
		api = DefaultKuboAPI
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3
	if cfg.RetryMax > 0 {
		client.RetryMax = cfg.RetryMax
	}
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.HTTPClient.Timeout = 30 * time.Second
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	client.CheckRetry = kuboRetryPolicy
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Debugf("Retrying %s %s (attempt %d)", req.Method, req.URL.Path, attempt+1)
		}
	}

	return &KuboStore{api: api, client: client}
}

// Kubo answers application errors (unknown cid, bad argument) with 500,
// which must not be retried.
func kuboRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusInternalServerError {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (k *KuboStore) Store(ctx context.Context, data []byte) (ContentID, error) {
	local, err := ComputeID(data)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "blob")
	if err != nil {
		return "", fmt.Errorf("building block/put request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("building block/put request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building block/put request: %w", err)
	}

	q := url.Values{}
	q.Set("cid-codec", "raw")
	q.Set("mhtype", "sha2-256")
	q.Set("pin", "true")
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, k.api+"/api/v0/block/put?"+q.Encode(), body.Bytes())
	if err != nil {
		return "", fmt.Errorf("building block/put request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := k.client.Do(req)
	if err != nil {
		return "", model.Wrap(model.KindStoreUnavailable, err, "ipfs block/put failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.Wrap(model.KindStoreUnavailable, kuboError(resp), "ipfs block/put failed")
	}

	var put kuboBlockPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&put); err != nil {
		return "", model.Wrap(model.KindStoreUnavailable, err, "ipfs block/put returned an unreadable response")
	}
	id, err := ParseID(put.Key)
	if err != nil {
		return "", fmt.Errorf("ipfs block/put returned invalid key: %w", err)
	}
	if id != local {
		return "", fmt.Errorf("ipfs block/put stored %d bytes as %s, expected %s", len(data), id, local)
	}

	logger.Infof("Pinned %d bytes as %s", len(data), id)
	return id, nil
}

func (k *KuboStore) Fetch(ctx context.Context, id ContentID) ([]byte, error) {
	parsed, err := ParseID(string(id))
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, k.api+"/api/v0/block/get?arg="+url.QueryEscape(string(parsed)), nil)
	if err != nil {
		return nil, fmt.Errorf("building block/get request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, model.Wrap(model.KindStoreUnavailable, err, "ipfs block/get failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusInternalServerError:
		return nil, model.Wrap(model.KindNotFound, kuboError(resp), fmt.Sprintf("content '%s' not retrievable", id))
	default:
		return nil, model.Wrap(model.KindStoreUnavailable, kuboError(resp), "ipfs block/get failed")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBlockSize+1))
	if err != nil {
		return nil, model.Wrap(model.KindStoreUnavailable, err, "reading ipfs block/get response")
	}
	return data, nil
}

func kuboError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ke kuboErrorResponse
	if err := json.Unmarshal(raw, &ke); err == nil && ke.Message != "" {
		return fmt.Errorf("kubo %d: %s", resp.StatusCode, ke.Message)
	}
	return fmt.Errorf("kubo %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
