package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket message types.
const (
	TypeAsk          = "ask"
	TypeAddMemory    = "add_memory"
	TypeResponse     = "response"
	TypeMemoryAdded  = "memory_added"
	TypeError        = "error"
	wsRequestTimeout = 60 * time.Second
)

// Message is a WebSocket frame in either direction.
type Message struct {
	Type     string `json:"type"`
	Query    string `json:"query,omitempty"`
	Content  string `json:"content,omitempty"`
	Response string `json:"response,omitempty"`
	ID       string `json:"id,omitempty"`
	Error    string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is open for every route
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket serves one client connection, answering each request
// frame in order until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	s.logger.Debug("websocket connected", "remote", r.RemoteAddr)

	for {
		var in Message
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		out := s.dispatch(r.Context(), in)
		if err := conn.WriteJSON(out); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, in Message) Message {
	ctx, cancel := context.WithTimeout(ctx, wsRequestTimeout)
	defer cancel()

	switch in.Type {
	case TypeAsk:
		answer, err := s.service.Ask(ctx, in.Query)
		if err != nil {
			return s.wsError("ask", err)
		}
		return Message{Type: TypeResponse, Response: answer}

	case TypeAddMemory:
		rec, err := s.service.AddMemory(ctx, in.Content)
		if err != nil {
			return s.wsError("add memory", err)
		}
		return Message{Type: TypeMemoryAdded, ID: rec.ID, Response: addedMessage}

	default:
		return Message{Type: TypeError, Error: "unknown message type: " + in.Type}
	}
}

func (s *Server) wsError(op string, err error) Message {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	}
	return Message{Type: TypeError, Error: msg}
}
