// Package network provides the WebSocket client used to watch and steer a
// running keysim from another process.
package network

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"keysim/internal/protocol"

	"github.com/gorilla/websocket"
)

// DefaultRetryDelay is the wait between reconnection attempts
const DefaultRetryDelay = 5 * time.Second

// WSClient handles the WebSocket connection to a control server
type WSClient struct {
	hostAddr   string
	token      string
	log        *slog.Logger
	retryDelay time.Duration
	send       chan protocol.Message
	done       chan struct{}
	closeOnce  sync.Once

	// Callbacks, set before Start
	OnStatus    func(status protocol.StatusPayload)
	OnCountdown func(remaining int)
	OnProgress  func(done, total int)
	OnError     func(message string)

	mu          sync.Mutex
	isConnected bool
}

// NewWSClient creates a new WebSocket client for hostAddr ("host:port")
func NewWSClient(hostAddr, token string, logger *slog.Logger) *WSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSClient{
		hostAddr:   hostAddr,
		token:      token,
		log:        logger.With("component", "ws-client"),
		retryDelay: DefaultRetryDelay,
		send:       make(chan protocol.Message, 100),
		done:       make(chan struct{}),
	}
}

// SetRetryDelay changes the wait between reconnection attempts
func (c *WSClient) SetRetryDelay(d time.Duration) {
	if d > 0 {
		c.retryDelay = d
	}
}

// Start begins the client loop (connect & process)
func (c *WSClient) Start() {
	go c.loop()
}

func (c *WSClient) loop() {
	for {
		c.connect()

		// If connect returns, it means we disconnected. Wait a bit and retry.
		select {
		case <-c.done:
			return
		case <-time.After(c.retryDelay):
			c.log.Info("WS Client: attempting reconnection")
		}
	}
}

func (c *WSClient) connect() {
	u := url.URL{Scheme: "ws", Host: c.hostAddr, Path: "/ws"}
	c.log.Info("WS Client: connecting", "url", u.String())

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			c.log.Error("WS Client: token rejected by server")
		} else {
			c.log.Warn("WS Client: connection failed", "error", err)
		}
		return
	}
	defer conn.Close()

	c.setConnected(true)
	c.log.Info("WS Client: connected")

	// specific done channel for this connection
	connDone := make(chan struct{})
	stopWrite := make(chan struct{})

	go func() {
		defer close(connDone)
		c.writePump(conn, stopWrite)
	}()

	// Close unblocks the read pump
	go func() {
		select {
		case <-c.done:
			conn.Close()
		case <-stopWrite:
		}
	}()

	c.readPump(conn)

	c.setConnected(false)
	close(stopWrite)

	// Ensure write pump stops
	<-connDone
}

func (c *WSClient) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(10*time.Second))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("WS Client: read error", "error", err)
			}
			break
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("WS Client: invalid message", "error", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *WSClient) writePump(conn *websocket.Conn, stop <-chan struct{}) {
	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			jsonMsg, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("WS Client: marshal error", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, jsonMsg); err != nil {
				c.log.Warn("WS Client: write error", "error", err)
				return
			}

		case <-stop:
			return

		case <-c.done:
			return
		}
	}
}

func (c *WSClient) handleMessage(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeStatus:
		var payload protocol.StatusPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			c.log.Warn("WS Client: bad status payload", "error", err)
			return
		}
		if c.OnStatus != nil {
			c.OnStatus(payload)
		}

	case protocol.TypeCountdown:
		var payload protocol.CountdownPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			c.log.Warn("WS Client: bad countdown payload", "error", err)
			return
		}
		if c.OnCountdown != nil {
			c.OnCountdown(payload.Remaining)
		}

	case protocol.TypeProgress:
		var payload protocol.ProgressPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			c.log.Warn("WS Client: bad progress payload", "error", err)
			return
		}
		if c.OnProgress != nil {
			c.OnProgress(payload.Done, payload.Total)
		}

	case protocol.TypeError:
		var payload protocol.ErrorPayload
		protocol.DecodePayload(msg, &payload)
		c.log.Warn("WS Client: server rejected message", "message", payload.Message)
		if c.OnError != nil {
			c.OnError(payload.Message)
		}
	}
}

// SendControl asks the server to pause, resume or stop the run
func (c *WSClient) SendControl(action string) {
	c.send <- protocol.Message{
		Type:    protocol.TypeControl,
		Payload: protocol.ControlPayload{Action: action},
	}
}

// RequestStatus asks the server for a fresh status message
func (c *WSClient) RequestStatus() {
	c.send <- protocol.Message{Type: protocol.TypeStatus}
}

func (c *WSClient) setConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = v
}

// IsConnected returns true if client is connected to the server
func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}

// Close stops the client
func (c *WSClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
