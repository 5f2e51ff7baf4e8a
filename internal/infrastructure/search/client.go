package search

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// DefaultIndex hosts every catalog document type; the per-document type
// discriminator keeps them apart.
const DefaultIndex = "catalog"

// ClientConfig holds configuration for the Elasticsearch client.
type ClientConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string

	// Transport overrides the HTTP transport. Tests inject a fake here.
	Transport http.RoundTripper
}

// NewClient creates an Elasticsearch client and verifies connectivity.
func NewClient(cfg ClientConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping returned %s", res.Status())
	}
	return client, nil
}
