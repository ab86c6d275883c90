package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"keysim/internal/protocol"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local control tool; the bearer token is the access check
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager handles WebSocket connections and broadcasting
type WSManager struct {
	server     *Server
	clients    map[*WebSocketClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	shutdown   chan struct{}
	stopOnce   sync.Once
}

// WebSocketClient represents a connected watcher
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	ip      string
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan protocol.Message, 256),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		shutdown:   make(chan struct{}),
	}
}

func (m *WSManager) start() {
	log := m.server.log
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			count := len(m.clients)
			m.clientsMu.Unlock()
			log.Info("WS: client registered", "remote", client.ip, "clients", count)

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
				log.Info("WS: client unregistered", "remote", client.ip, "clients", len(m.clients))
			}
			m.clientsMu.Unlock()

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-m.shutdown:
			m.clientsMu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
			}
			m.clientsMu.Unlock()
			return
		}
	}
}

func (m *WSManager) stop() {
	m.stopOnce.Do(func() { close(m.shutdown) })
}

// send queues a broadcast without blocking the caller once the hub is gone
func (m *WSManager) send(msg protocol.Message) {
	select {
	case m.broadcast <- msg:
	case <-m.shutdown:
	}
}

// clientCount returns the number of registered clients
func (m *WSManager) clientCount() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}

func (m *WSManager) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		m.server.log.Error("WS: failed to marshal broadcast message", "error", err)
		return
	}

	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	for client := range m.clients {
		select {
		case client.send <- jsonMsg:
		default:
			// Slow consumer
			close(client.send)
			delete(m.clients, client)
		}
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.server.log.Warn("WS: failed to upgrade connection", "error", err)
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 256),
		ip:      r.RemoteAddr,
	}

	// New watchers get the current state first
	if data, err := json.Marshal(protocol.Message{Type: protocol.TypeStatus, Payload: m.server.status()}); err == nil {
		client.send <- data
	}

	select {
	case m.register <- client:
	case <-m.shutdown:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub.
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.server.log.Warn("WS: read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) handleMessage(data []byte) {
	log := c.manager.server.log

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn("WS: invalid message format", "error", err)
		c.reply(errorMessage("invalid message"))
		return
	}

	switch msg.Type {
	case protocol.TypeControl:
		var payload protocol.ControlPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil || !protocol.ValidAction(payload.Action) {
			log.Warn("WS: invalid control payload", "remote", c.ip)
			c.reply(errorMessage("invalid control action"))
			return
		}

		log.Info("WS: control request", "action", payload.Action, "remote", c.ip)
		c.manager.server.apply(payload.Action)

	case protocol.TypeStatus:
		c.reply(protocol.Message{Type: protocol.TypeStatus, Payload: c.manager.server.status()})

	default:
		c.reply(errorMessage("unsupported message type " + string(msg.Type)))
	}
}

// reply queues a message for this client only
func (c *WebSocketClient) reply(msg protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.manager.clientsMu.RLock()
	defer c.manager.clientsMu.RUnlock()
	if !c.manager.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func errorMessage(text string) protocol.Message {
	return protocol.Message{Type: protocol.TypeError, Payload: protocol.ErrorPayload{Message: text}}
}
