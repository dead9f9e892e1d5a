package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client is a minimal REST client to Pinecone. The index data-plane host is
// resolved from the control plane on first use and cached for the life of the
// client.
type Client struct {
	apiKey        string
	index         string
	controllerURL string
	client        *http.Client

	mu   sync.Mutex
	host string
}

type Config struct {
	APIKey        string
	Index         string
	ControllerURL string // default https://api.pinecone.io
	IndexHost     string // optional; skips the control-plane lookup
	Timeout       time.Duration
}

// Vector is an upsert unit: id, embedding values and arbitrary metadata.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Match is a single query result, ordered by descending similarity.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	controller := cfg.ControllerURL
	if controller == "" {
		controller = "https://api.pinecone.io"
	}
	return &Client{
		apiKey:        cfg.APIKey,
		index:         cfg.Index,
		controllerURL: controller,
		host:          normalizeHost(cfg.IndexHost),
		client:        &http.Client{Timeout: timeout},
	}
}

// Upsert writes vectors into the given namespace. Pinecone overwrites on id
// collision, but ids here are always fresh, so repeated indexing of the same
// document needs a fresh namespace to avoid duplicates.
func (c *Client) Upsert(ctx context.Context, vectors []Vector, namespace string) error {
	host, err := c.ensureHost(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{
		"vectors":   vectors,
		"namespace": namespace,
	}
	return c.postJSON(ctx, host+"/vectors/upsert", body, nil)
}

// Query returns the topK nearest vectors within the namespace, with metadata.
func (c *Client) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]Match, error) {
	if topK <= 0 {
		topK = 7
	}
	host, err := c.ensureHost(ctx)
	if err != nil {
		return nil, err
	}
	req := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"namespace":       namespace,
	}
	var resp struct {
		Matches []Match `json:"matches"`
	}
	if err := c.postJSON(ctx, host+"/query", req, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// ensureHost resolves the index host via the control plane once.
func (c *Client) ensureHost(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host != "" {
		return c.host, nil
	}

	url := fmt.Sprintf("%s/indexes/%s", c.controllerURL, c.index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinecone describe index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("pinecone describe index %q failed: %s", c.index, resp.Status)
	}

	var desc struct {
		Host string `json:"host"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return "", fmt.Errorf("pinecone describe index: %w", err)
	}
	if desc.Host == "" {
		return "", fmt.Errorf("pinecone index %q has no host", c.index)
	}

	c.host = normalizeHost(desc.Host)
	return c.host, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func normalizeHost(host string) string {
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return strings.TrimSuffix(host, "/")
}
