package influx

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
)

// Config holds everything needed to reach the store. All fields except
// Strict are required; Validate runs once at construction so a misconfigured
// client never gets as far as issuing requests.
type Config struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
	Strict bool   `yaml:"strict"`
}

func (config *Config) Validate() error {
	if config.URL == "" {
		return fmt.Errorf("influx url is not set")
	}
	if config.Token == "" {
		return fmt.Errorf("influx token is not set")
	}
	if config.Org == "" {
		return fmt.Errorf("influx org is not set")
	}
	if config.Bucket == "" {
		return fmt.Errorf("influx bucket is not set")
	}
	return nil
}

// TransportError is the single error type the client surfaces. The original
// cause is kept for diagnostics and unwrapping.
type TransportError struct {
	Op  string
	Err error
}

func (transportErr *TransportError) Error() string {
	return fmt.Sprintf("influx: %s: %s", transportErr.Op, transportErr.Err)
}

func (transportErr *TransportError) Unwrap() error {
	return transportErr.Err
}

// Client issues Flux queries and normalizes the responses. It holds no state
// between calls; callers impose timeouts through the context.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
	}, nil
}

func (client *Client) Bucket() string {
	return client.config.Bucket
}

func (client *Client) queryURL() string {
	return fmt.Sprintf("%s/api/v2/query?org=%s",
		strings.TrimRight(client.config.URL, "/"), url.QueryEscape(client.config.Org))
}

// Query runs one descriptor against the store and returns the rows that
// parsed, in store order. An empty result is an empty slice, not an error.
func (client *Client) Query(ctx context.Context, desc QueryDescriptor) ([]Point, error) {
	flux, err := desc.flux(client.config.Bucket)
	if err != nil {
		return nil, &TransportError{Op: "build query", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.queryURL(), strings.NewReader(flux))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Token "+client.config.Token)
	req.Header.Set("Content-Type", "application/vnd.flux")
	req.Header.Set("Accept", "application/csv")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &TransportError{
			Op:  "query",
			Err: fmt.Errorf("bad http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	points, err := decodeTable(body, client.config.Strict)
	if err != nil {
		return nil, &TransportError{Op: "decode response", Err: err}
	}
	return points, nil
}

// Ping checks that the store answers on its health endpoint.
func (client *Client) Ping(ctx context.Context) error {
	endpoint := strings.TrimRight(client.config.URL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &TransportError{Op: "build request", Err: err}
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "ping", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: "ping", Err: fmt.Errorf("bad http status %d", resp.StatusCode)}
	}
	return nil
}
