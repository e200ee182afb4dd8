// internal/report/sheets/client_test.go
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		BaseURL:       srv.URL,
		APIKey:        "test-key",
		SpreadsheetID: "sheet-1",
		Timeout:       5 * time.Second,
	})
}

func TestClient_ClearAndWrite(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	err := client.ClearAndWrite(context.Background(), "orders",
		[]string{"Order", "Risk"},
		[][]string{{"#1001", "0.82"}},
	)

	assert.NoError(t, err)
	assert.Equal(t, "/spreadsheets/sheet-1/grids/orders:clearAndWrite", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, []interface{}{"Order", "Risk"}, gotBody["header"])
}

func TestClient_SetBandFormat(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	err := client.SetBandFormat(context.Background(), "orders", 5, map[string]string{"high": "#f4cccc"})

	assert.NoError(t, err)
	assert.Equal(t, "/spreadsheets/sheet-1/grids/orders:setBandFormat", gotPath)
	assert.Equal(t, float64(5), gotBody["column"])
}

func TestClient_NonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.ClearAndWrite(context.Background(), "orders", nil, nil)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetWriteFailed))
}
