package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StepEvent is one frame of streamed VM state, sent after every Step.
type StepEvent struct {
	PC         uint16    `json:"pc"`
	GR         [8]uint16 `json:"gr"`
	SP         uint16    `json:"sp"`
	FlagS      bool      `json:"flagS"`
	FlagZ      bool      `json:"flagZ"`
	FlagO      bool      `json:"flagO"`
	Output     string    `json:"output"`
	Terminated bool      `json:"terminated"`
	Error      string    `json:"error,omitempty"`
}

// handleWebSocket upgrades the connection and single-steps the session's VM
// once per received message, streaming a StepEvent back after each step,
// the same drive-by-client-message shape as the teacher's broadcaster.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			return
		}

		stepErr := session.VM.Step()
		ev := StepEvent{
			PC:         session.VM.CPU.PC,
			GR:         session.VM.CPU.GR,
			SP:         session.VM.CPU.SP,
			FlagS:      session.VM.CPU.FR.S,
			FlagZ:      session.VM.CPU.FR.Z,
			FlagO:      session.VM.CPU.FR.O,
			Output:     session.VM.Output.String(),
			Terminated: session.VM.Terminated,
		}
		if stepErr != nil {
			ev.Error = stepErr.Error()
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
		if ev.Terminated || ev.Error != "" {
			return
		}
	}
}
