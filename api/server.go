package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/caslii/comet2/loader"
)

// Server is the HTTP+WebSocket front end over a SessionManager.
type Server struct {
	Addr     string
	sessions *SessionManager
	http     *http.Server
}

// NewServer builds a Server listening on addr (e.g. ":8080").
func NewServer(addr string) *Server {
	s := &Server{Addr: addr, sessions: NewSessionManager()}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /assemble", s.handleAssemble)
	mux.HandleFunc("POST /programs/{id}/run", s.handleRun)
	mux.HandleFunc("GET /programs/{id}/ws", s.handleWebSocket)

	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins serving; it blocks until Shutdown is called or an error
// occurs.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Handler returns the server's underlying http.Handler, for use with a test
// HTTP server that supplies its own listener.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type assembleRequest struct {
	Source string   `json:"source"`
	Input  []string `json:"input"`
	Quiet  bool     `json:"quiet"`
}

type assembleResponse struct {
	SessionID string `json:"sessionId"`
	Entry     uint16 `json:"entry"`
	WordCount int    `json:"wordCount"`
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	var req assembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	img, err := loader.Assemble(req.Source, "session.cas")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	session, err := s.sessions.Create(img, req.Input, req.Quiet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, assembleResponse{
		SessionID: session.ID,
		Entry:     img.Entry,
		WordCount: len(img.Words),
	})
}

type runResponse struct {
	Output      string `json:"output"`
	Terminated  bool   `json:"terminated"`
	Termination string `json:"termination"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	runErr := session.VM.Run()
	resp := runResponse{
		Output:      session.VM.Output.String(),
		Terminated:  session.VM.Terminated,
		Termination: session.VM.Termination.String(),
	}
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
