package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dKG/rpc/common"
	"github.com/ValentinKolb/dKG/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	rankURLs   []*url.URL // indexed by rank
	client     *http.Client
	retryCount int
	closed     atomic.Bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (transport *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Parse each server URL
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for rank, endpoint := range config.Endpoints {
		if !strings.Contains(endpoint, "://") {
			endpoint = "http://" + endpoint
		}
		parsedURL, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint of rank %d: %v", rank, err)
		}
		parsedURLs[rank] = parsedURL
	}

	connsPerHost := max(config.ConnectionsPerEndpoint, 1)
	client := &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        connsPerHost * len(parsedURLs),
			MaxIdleConnsPerHost: connsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// every rank has to be reachable
	for rank, u := range parsedURLs {
		resp, err := client.Get(u.JoinPath("ping").String())
		if err != nil {
			client.CloseIdleConnections()
			return fmt.Errorf("failed to connect to rank %d at %s: %v", rank, u, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			client.CloseIdleConnections()
			return fmt.Errorf("rank %d at %s is not ready: %s", rank, u, resp.Status)
		}
	}

	transport.client = client
	transport.rankURLs = parsedURLs
	transport.retryCount = max(config.RetryCount, 1)
	transport.closed.Store(false)

	Logger.Infof("Connected to %d ranks using http transport", len(parsedURLs))
	return nil
}

func (transport *httpClientTransport) Send(rank uint64, req []byte) (resp []byte, err error) {
	// Check if the transport is initialized
	if transport.client == nil || transport.closed.Load() {
		return nil, fmt.Errorf("http transport not initialized")
	}
	if rank >= uint64(len(transport.rankURLs)) {
		return nil, fmt.Errorf("no endpoint for rank %d", rank)
	}
	requestURL := transport.rankURLs[rank].JoinPath(fmt.Sprint(rank)).String()

	for i := 0; i < transport.retryCount; i++ {
		resp, err = transport.post(requestURL, req)
		if err == nil {
			return resp, nil
		}
		Logger.Debugf("Request attempt %d/%d to rank %d failed: %v", i+1, transport.retryCount, rank, err)
	}
	return nil, err
}

func (transport *httpClientTransport) Close() error {
	transport.closed.Store(true)
	if transport.client != nil {
		transport.client.CloseIdleConnections()
	}
	return nil
}

// post sends one request, the body reader is consumed so every attempt needs its own
func (transport *httpClientTransport) post(requestURL string, req []byte) ([]byte, error) {
	httpResponse, err := transport.client.Post(requestURL, "application/octet-stream", bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Check if the response status code is OK
	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	return io.ReadAll(httpResponse.Body)
}
