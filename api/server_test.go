package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caslii/comet2/api"
)

func TestServer_AssembleAndRun(t *testing.T) {
	s := httptest.NewServer(newTestHandler(t))
	defer s.Close()

	body, _ := json.Marshal(map[string]any{
		"source": "M START\n  RET\n  END\n",
		"quiet":  true,
	})
	resp, err := http.Post(s.URL+"/assemble", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var asmResp struct {
		SessionID string `json:"sessionId"`
		Entry     int    `json:"entry"`
		WordCount int    `json:"wordCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&asmResp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if asmResp.SessionID == "" {
		t.Fatal("expected a non-empty session ID")
	}
	if asmResp.WordCount != 1 {
		t.Errorf("expected 1 word, got %d", asmResp.WordCount)
	}

	runResp, err := http.Post(s.URL+"/programs/"+asmResp.SessionID+"/run", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer runResp.Body.Close()
	if runResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", runResp.StatusCode)
	}

	var run struct {
		Terminated bool   `json:"terminated"`
		Error      string `json:"error,omitempty"`
	}
	if err := json.NewDecoder(runResp.Body).Decode(&run); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !run.Terminated {
		t.Error("expected the VM to have terminated")
	}
	if run.Error != "" {
		t.Errorf("unexpected runtime error: %s", run.Error)
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	// api.NewServer binds http.Server.Addr eagerly; httptest.NewServer
	// supplies its own listener, so route through the server's mux by
	// constructing a second instance and serving its handler directly.
	s := api.NewServer(":0")
	return s.Handler()
}
