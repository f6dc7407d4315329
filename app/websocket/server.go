package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	TypeStateChanged  MessageType = "state_changed"  // A store collection was written, clients re-read it
	TypeSaleCompleted MessageType = "sale_completed" // A sale was finalized at the POS or storefront
	TypeHeartbeat     MessageType = "heartbeat"
	TypeWelcome       MessageType = "welcome"
)

// ClientType represents the type of connected client
type ClientType string

const (
	ClientPOS        ClientType = "pos"
	ClientStorefront ClientType = "storefront"
	ClientAdmin      ClientType = "admin"
)

// ServiceType is the mDNS service the server announces itself under
const ServiceType = "_retailpos._tcp"

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = 54 * time.Second
	heartbeatInterval = 30 * time.Second
	sendBuffer        = 256
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	ClientID  string          `json:"client_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID          string
	Type        ClientType
	ConnectedAt time.Time
	RemoteAddr  string

	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// ClientInfo describes a connected client for status endpoints
type ClientInfo struct {
	ID          string     `json:"id"`
	Type        ClientType `json:"type"`
	ConnectedAt time.Time  `json:"connected_at"`
	RemoteAddr  string     `json:"remote_addr"`
}

// Server fans store changes out to every connected UI
type Server struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	upgrader   websocket.Upgrader
	mu         sync.RWMutex
	log        *zap.Logger

	heartbeat time.Duration
	started   atomic.Bool
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}

	mdns *zeroconf.Server
}

// NewServer creates a new WebSocket server. Start must be called before
// connections are accepted.
func NewServer(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
		heartbeat:  heartbeatInterval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from local network
				return true
			},
		},
	}
}

// Start runs the hub loop
func (s *Server) Start() {
	if s.started.CompareAndSwap(false, true) {
		go s.run()
	}
}

// Stop disconnects every client, withdraws the mDNS announcement and ends
// the hub loop
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.started.Load() {
			<-s.done
		}

		if s.mdns != nil {
			s.mdns.Shutdown()
			s.log.Info("mDNS service announcement stopped")
		}
	})
}

// Announce registers the server on the local network via mDNS/Zeroconf
func (s *Server) Announce(instance string, port int) error {
	server, err := zeroconf.Register(
		instance,
		ServiceType,
		"local.",
		port,
		[]string{"version=1.0", "path=/ws"},
		nil, // all interfaces
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	s.mdns = server
	s.log.Info("mDNS service announced", zap.String("service", ServiceType), zap.Int("port", port))
	return nil
}

// run handles the main server loop
func (s *Server) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			s.log.Info("Client registered", zap.String("client", client.ID), zap.String("type", string(client.Type)))
			s.sendWelcome(client)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.send)
				s.log.Info("Client unregistered", zap.String("client", client.ID))
			}
			s.mu.Unlock()

		case message := <-s.broadcast:
			s.deliver(message)

		case <-ticker.C:
			if data, err := encode(TypeHeartbeat, map[string]string{"ping": "pong"}); err == nil {
				s.deliver(data)
			}

		case <-s.stop:
			s.mu.Lock()
			for id, client := range s.clients {
				delete(s.clients, id)
				close(client.send)
			}
			s.mu.Unlock()
			return
		}
	}
}

// deliver queues data on every client. Clients whose buffer is full are dropped.
func (s *Server) deliver(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, client := range s.clients {
		select {
		case client.send <- data:
		default:
			delete(s.clients, id)
			close(client.send)
			s.log.Warn("Client buffer full, disconnecting", zap.String("client", id))
		}
	}
}

// HandleWebSocket upgrades the request and attaches the client to the hub.
// The optional "type" query parameter tags the client.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientType := ClientType(r.URL.Query().Get("type"))
	if clientType == "" {
		clientType = ClientPOS
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.NewString(),
		Type:        clientType,
		ConnectedAt: time.Now(),
		RemoteAddr:  r.RemoteAddr,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		server:      s,
	}

	select {
	case s.register <- client:
	case <-s.stop:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Broadcast queues a message for every client. Messages are dropped when
// the hub is backed up, so callers never block.
func (s *Server) Broadcast(msgType MessageType, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		s.log.Error("Failed to encode message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}

	select {
	case s.broadcast <- data:
	default:
		s.log.Warn("Broadcast queue full, message dropped", zap.String("type", string(msgType)))
	}
}

// BroadcastChange tells clients which collection was written
func (s *Server) BroadcastChange(change services.Change) {
	s.Broadcast(TypeStateChanged, change)
}

// BroadcastSale announces a finalized sale
func (s *Server) BroadcastSale(sale models.Sale) {
	s.Broadcast(TypeSaleCompleted, map[string]interface{}{
		"id":         sale.ID,
		"total":      sale.Total,
		"currency":   sale.Currency,
		"order_type": sale.OrderType,
		"customer":   sale.CustomerName,
	})
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Clients lists the connected clients
func (s *Server) Clients() []ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, ClientInfo{ID: c.ID, Type: c.Type, ConnectedAt: c.ConnectedAt, RemoteAddr: c.RemoteAddr})
	}
	return clients
}

func (s *Server) sendWelcome(client *Client) {
	data, err := encode(TypeWelcome, map[string]string{"client_id": client.ID})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Timestamp: time.Now(), Data: raw})
}

// readPump handles reading messages from the client
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.log.Debug("WebSocket read error", zap.String("client", c.ID), zap.Error(err))
			}
			return
		}

		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			c.server.log.Debug("Error parsing message", zap.String("client", c.ID), zap.Error(err))
			continue
		}
		c.handleMessage(&message)
	}
}

// writePump handles writing messages to the client
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage answers client heartbeats. The hub is one-way otherwise:
// clients change state through the REST API.
func (c *Client) handleMessage(message *Message) {
	switch message.Type {
	case TypeHeartbeat:
		data, err := encode(TypeHeartbeat, map[string]string{"status": "alive"})
		if err != nil {
			return
		}
		c.server.mu.RLock()
		defer c.server.mu.RUnlock()
		if _, ok := c.server.clients[c.ID]; !ok {
			return
		}
		select {
		case c.send <- data:
		default:
		}
	default:
		c.server.log.Debug("Ignoring client message", zap.String("client", c.ID), zap.String("type", string(message.Type)))
	}
}
