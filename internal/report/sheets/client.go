// internal/report/sheets/client.go
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrSheetWriteFailed = errors.New("SHEET_WRITE_FAILED")
)

type Config struct {
	BaseURL       string
	APIKey        string
	SpreadsheetID string
	Timeout       time.Duration
}

// Client talks to the spreadsheet service that backs the report grids.
type Client struct {
	config *Config
	client *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ClearAndWrite replaces a grid's entire contents with the given header and
// rows. Grids are fully recomputed every run; there is no append path.
func (c *Client) ClearAndWrite(ctx context.Context, grid string, header []string, rows [][]string) error {
	payload := map[string]interface{}{
		"header": header,
		"rows":   rows,
	}
	return c.post(ctx, fmt.Sprintf("/spreadsheets/%s/grids/%s:clearAndWrite", c.config.SpreadsheetID, grid), payload)
}

// SetBandFormat colors rows by the value of one column, using the given
// band-to-color map.
func (c *Client) SetBandFormat(ctx context.Context, grid string, column int, colors map[string]string) error {
	payload := map[string]interface{}{
		"column": column,
		"colors": colors,
	}
	return c.post(ctx, fmt.Sprintf("/spreadsheets/%s/grids/%s:setBandFormat", c.config.SpreadsheetID, grid), payload)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %v", ErrSheetWriteFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSheetWriteFailed, resp.StatusCode)
	}
	return nil
}
