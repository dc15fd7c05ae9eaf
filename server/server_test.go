package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/akashuv-21/parase/internal/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const label = `{
  "a.jpg": {"elements": [
    {"category": "paragraph", "content": {"text": "Hello world", "html": ""}},
    {"category": "table", "content": {"text": "", "html": "<tr><td>A</td><td>B</td></tr>"}}
  ]},
  "b.jpg": {"elements": [
    {"category": "table", "content": {"text": "", "html": "<tr><td rowspan='2'>A</td></tr>"}}
  ]}
}`

const prediction = `{
  "a.jpg": {"elements": [
    {"category": "paragraph", "content": {"text": "Hello world", "html": ""}},
    {"category": "table", "content": {"text": "", "html": "<table><tr><td>A</td><td>B</td></tr></table>"}}
  ]},
  "b.jpg": {"elements": [
    {"category": "table", "content": {"text": "", "html": "<table><tr><td>A</td></tr></table>"}}
  ]}
}`

type memoryStore struct {
	mu      sync.Mutex
	reports []*types.Report
}

func (m *memoryStore) Save(_ context.Context, _ types.Run, report *types.Report) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return int64(len(m.reports)), nil
}

func (m *memoryStore) Recent(context.Context, int) ([]types.Run, error) { return nil, nil }
func (m *memoryStore) Close()                                           {}

func newRequest(t *testing.T, mode, gt, pred string) []byte {
	t.Helper()
	body, err := json.Marshal(EvaluateRequest{
		Mode:       mode,
		Label:      json.RawMessage(gt),
		Prediction: json.RawMessage(pred),
	})
	require.NoError(t, err)
	return body
}

func postEvaluate(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/evaluate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEvaluateEndpoint(t *testing.T) {
	store := &memoryStore{}
	ts := httptest.NewServer(New(Config{Store: store}).Handler())
	defer ts.Close()

	resp := postEvaluate(t, ts.URL, newRequest(t, "table", label, prediction))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)

	var report types.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, types.ModeTable, report.Mode)
	assert.Len(t, report.Documents, 2)
	// a.jpg is identical, b.jpg loses one rowspan out of four nodes
	assert.InDelta(t, (1+0.75)/2, report.TEDS, 1e-12)
	assert.InDelta(t, (1+0.75)/2, report.TEDSS, 1e-12)

	resp = postEvaluate(t, ts.URL, newRequest(t, "", label, prediction))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, types.ModeLayout, report.Mode)
	assert.Equal(t, 1.0, report.NID)

	assert.Len(t, store.reports, 2)
}

func TestEvaluateEndpointNoTables(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	textOnly := `{"a.jpg": {"elements": [{"category": "paragraph", "content": {"text": "x"}}]}}`
	resp := postEvaluate(t, ts.URL, newRequest(t, "table", textOnly, textOnly))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report types.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Zero(t, report.TEDS)
	assert.NotEmpty(t, report.Warning)
}

func TestEvaluateEndpointBadRequests(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"unsupported mode", newRequest(t, "ocr", label, prediction), "ocr mode not supported"},
		{"schema error", newRequest(t, "layout", `{"a.jpg": {}}`, prediction), `"elements" key`},
		{"empty prediction", newRequest(t, "layout", label, `{}`), "corpus is empty"},
		{"malformed json", []byte(`{"mode":`), "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postEvaluate(t, ts.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var buf bytes.Buffer
			buf.ReadFrom(resp.Body)
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	resp, err := http.Get(ts.URL + "/evaluate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := httptest.NewServer(New(Config{RateLimit: 0.001, Burst: 1}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestWebSocketEvaluate(t *testing.T) {
	ts := httptest.NewServer(New(Config{Workers: 2}).Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "evaluate",
		"data": map[string]interface{}{
			"mode":       "table",
			"label":      json.RawMessage(label),
			"prediction": json.RawMessage(prediction),
		},
	}))

	var progress []string
	var result struct {
		Type string       `json:"type"`
		Data types.Report `json:"data"`
	}
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == "progress" {
			progress = append(progress, msg.Content)
			continue
		}
		require.Equal(t, "result", msg.Type, "unexpected message: %s", data)
		require.NoError(t, json.Unmarshal(data, &result))
		break
	}

	assert.ElementsMatch(t, []string{"a.jpg", "b.jpg"}, progress)
	assert.Len(t, result.Data.Documents, 2)
	assert.InDelta(t, 0.875, result.Data.TEDS, 1e-12)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat"}))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Content, "unknown message type")
}
