package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Store is the external spreadsheet collaborator: create a new document and
// append the given cell values. Always creates a new resource.
type Store interface {
	CreateRecord(ctx context.Context, values [][]string, name string) (string, error)
}

// Client talks to the spreadsheet-creation API. Credentials for the
// document store live behind that endpoint, not here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a spreadsheet API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type createRequest struct {
	Data      [][]string `json:"data"`
	SheetName string     `json:"sheetName,omitempty"`
}

type createResponse struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Error         string `json:"error,omitempty"`
}

// CreateRecord creates a new spreadsheet holding values and returns its id.
// Transport and auth failures come back from the API as a generic 500.
func (c *Client) CreateRecord(ctx context.Context, values [][]string, name string) (string, error) {
	body, err := json.Marshal(createRequest{Data: values, SheetName: name})
	if err != nil {
		return "", fmt.Errorf("failed to marshal spreadsheet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spreadsheet API request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed createResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode spreadsheet API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return "", fmt.Errorf("spreadsheet API returned %d: %s", resp.StatusCode, parsed.Error)
		}
		return "", fmt.Errorf("spreadsheet API returned status %d", resp.StatusCode)
	}
	if parsed.SpreadsheetID == "" {
		return "", fmt.Errorf("spreadsheet API returned no spreadsheet id")
	}

	return parsed.SpreadsheetID, nil
}
