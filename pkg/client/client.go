// Package client is an HTTP client for the mandi API, used by the
// watcher and external tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/iiorcrop/mandi/internal/models"
)

// Client is a client for the mandi API service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client against the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// UploadCSV uploads a market-price CSV file and returns the batch summary
func (c *Client) UploadCSV(ctx context.Context, filePath string) (*models.BatchSummary, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening CSV file")
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, errors.Wrap(err, "error creating multipart form")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, errors.Wrap(err, "error reading CSV file")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "error closing multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/market-prices/upload", &body)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error making request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("API returned status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var summary models.BatchSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, errors.Wrap(err, "error decoding response")
	}

	return &summary, nil
}

// ListPrices fetches price rows filtered by state and market
func (c *Client) ListPrices(ctx context.Context, state, market string, limit int) ([]models.PricePoint, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", state)
	}
	if market != "" {
		params.Set("market", market)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	endpoint := fmt.Sprintf("%s/api/market-prices?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error making request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("API returned status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var points []models.PricePoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, errors.Wrap(err, "error decoding response")
	}

	return points, nil
}

// Health checks whether the API service is up
func (c *Client) Health(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/health", nil)
	if err != nil {
		return false, errors.Wrap(err, "error creating request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "error making request")
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
