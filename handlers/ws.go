package handlers

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"emam3/chat-relay/constants"
	"emam3/chat-relay/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 10
	sendBufferSize = 256
)

// ChatServer upgrades /chat requests to WebSocket connections and relays every
// text frame through a Relay.
type ChatServer struct {
	relay    *Relay
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader

	// ctx is the parent of every completion call.
	ctx context.Context

	connectRate  rate.Limit
	connectBurst int
	// connectLimiters holds one *rate.Limiter per client address.
	connectLimiters sync.Map

	clientID func(*http.Request) string

	// clients holds every open *WSClient keyed by connection id.
	clients sync.Map
}

type ChatOption func(*ChatServer)

// WithConnectLimit limits how often one client address may open a connection.
// A zero rate disables the limit.
func WithConnectLimit(r rate.Limit, burst int) ChatOption {
	return func(s *ChatServer) {
		s.connectRate = r
		s.connectBurst = burst
	}
}

// WithClientIDFunc replaces the function deriving the quota key from a request.
func WithClientIDFunc(fn func(*http.Request) string) ChatOption {
	return func(s *ChatServer) { s.clientID = fn }
}

func WithBaseContext(ctx context.Context) ChatOption {
	return func(s *ChatServer) { s.ctx = ctx }
}

func NewChatServer(relay *Relay, m *metrics.Metrics, logger *slog.Logger, opts ...ChatOption) *ChatServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ChatServer{
		relay:   relay,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ctx:      context.Background(),
		clientID: RemoteHost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteHost returns the IP part of r.RemoteAddr. Proxy headers are ignored, so
// every user behind one address shares a quota.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type WSClient struct {
	conn     *websocket.Conn
	id       string
	clientID string
	send     chan []byte
	// done is closed when the read side stops; pending replies are dropped after that.
	done   chan struct{}
	server *ChatServer
	logger *slog.Logger
}

func (s *ChatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := s.clientID(r)

	if !s.allowConnect(clientID) {
		if s.metrics != nil {
			s.metrics.RecordRejectedUpgrade()
		}
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", "client", clientID, "error", err)
		return
	}

	client := &WSClient{
		conn:     conn,
		id:       uuid.NewString(),
		clientID: clientID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		server:   s,
	}
	client.logger = s.logger.With("conn_id", client.id, "client", clientID)

	s.clients.Store(client.id, client)
	if s.metrics != nil {
		s.metrics.ConnectionOpened()
	}
	client.logger.Debug("connection opened")

	go client.writePump()
	go client.readPump()
}

func (s *ChatServer) allowConnect(clientID string) bool {
	if s.connectRate <= 0 {
		return true
	}
	limiter, _ := s.connectLimiters.LoadOrStore(clientID, rate.NewLimiter(s.connectRate, s.connectBurst))
	return limiter.(*rate.Limiter).Allow()
}

// CloseAll closes every open connection. Used on shutdown, since http.Server
// does not track hijacked connections.
func (s *ChatServer) CloseAll() {
	s.clients.Range(func(_, v any) bool {
		v.(*WSClient).conn.Close()
		return true
	})
}

// ActiveConnections returns the number of open connections.
func (s *ChatServer) ActiveConnections() int {
	n := 0
	s.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// readPump evaluates the quota for each frame in arrival order and starts the
// completion call in its own goroutine so the next frame is read immediately.
func (c *WSClient) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
		c.server.clients.Delete(c.id)
		if c.server.metrics != nil {
			c.server.metrics.ConnectionClosed()
		}
		c.logger.Debug("connection closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	relay := c.server.relay
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		if !relay.Admit(c.clientID, relay.Now()) {
			c.deliver([]byte(constants.LimitReachedMessage))
			continue
		}

		go func(text string) {
			c.deliver([]byte(relay.Complete(c.server.ctx, text)))
		}(string(message))
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// deliver queues a reply, dropping it if the connection is gone.
func (c *WSClient) deliver(message []byte) {
	select {
	case c.send <- message:
	case <-c.done:
	}
}
