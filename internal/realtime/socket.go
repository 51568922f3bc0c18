package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hostelhub/hostel-service/internal/auth"
)

const (
	EventConnectError = "connect_error"
	AuthErrorMessage  = "Authentication error"

	DefaultHandshakeTimeout = 10 * time.Second

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// TokenVerifier verifies the handshake token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type handshake struct {
	Auth struct {
		Token string `json:"token"`
	} `json:"auth"`
}

// Server upgrades HTTP connections and authenticates them with the first
// frame the client sends: {"auth":{"token":"..."}}.
type Server struct {
	hub              *Hub
	verifier         TokenVerifier
	logger           *slog.Logger
	upgrader         websocket.Upgrader
	handshakeTimeout time.Duration
}

type ServerOption func(*Server)

// WithHandshakeTimeout bounds how long a client may wait before sending the
// auth frame
func WithHandshakeTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.handshakeTimeout = d }
}

// WithCheckOrigin replaces the origin policy of the upgrader
func WithCheckOrigin(check func(r *http.Request) bool) ServerOption {
	return func(s *Server) { s.upgrader.CheckOrigin = check }
}

func NewServer(hub *Hub, verifier TokenVerifier, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		hub:      hub,
		verifier: verifier,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Debug("Websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	claims, err := s.authenticate(conn)
	if err != nil {
		s.logger.Info("Socket authentication failed", "error", err, "remote_addr", r.RemoteAddr)
		s.reject(conn)
		return
	}

	client := s.hub.NewClient(claims.UserID)
	s.hub.Join(client)

	go s.writeLoop(conn, client)
	s.readLoop(conn, client)
}

func (s *Server) authenticate(conn *websocket.Conn) (*auth.Claims, error) {
	if err := conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout)); err != nil {
		return nil, err
	}

	var payload handshake
	if err := conn.ReadJSON(&payload); err != nil {
		return nil, err
	}
	return s.verifier.Verify(payload.Auth.Token)
}

func (s *Server) reject(conn *websocket.Conn) {
	defer conn.Close()

	data, _ := json.Marshal(map[string]string{"message": AuthErrorMessage})
	frame, _ := json.Marshal(Frame{Event: EventConnectError, Data: data})

	deadline := time.Now().Add(writeWait)
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, AuthErrorMessage),
		deadline)
}

// readLoop only services control frames. Clients have nothing to send after
// the handshake; any data frame is ignored.
func (s *Server) readLoop(conn *websocket.Conn, client *Client) {
	defer func() {
		s.hub.Leave(client)
		conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Socket closed unexpectedly", "user_id", client.UserID, "error", err)
			}
			return
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
