// Package websocket carries page events between browsers and mounted pages.
// Every socket belongs to exactly one page; outbound messages of a page reach
// only that page's sockets.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apperrors "github.com/abrezinsky/hoopsboard/internal/errors"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/services"
)

// MsgError is sent back to a socket whose message could not be applied
const MsgError = "error"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	maxMessage = 64 * 1024
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // pages are addressed by unguessable ids
	},
}

// Gauge is told how many sockets are connected
type Gauge interface {
	SetSocketClients(n int)
}

// Hub maintains the sockets of every mounted page
type Hub struct {
	log        logger.Logger
	pages      services.PageServicer
	gauge      Gauge
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// Client is a middleman between one websocket connection and its page
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	pageID string
	send   chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, pages services.PageServicer) *Hub {
	return &Hub{
		log:        log,
		pages:      pages,
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetGauge sets the connected socket gauge
func (h *Hub) SetGauge(g Gauge) {
	h.gauge = g
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration and unregistration
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.pageID] == nil {
				h.clients[client.pageID] = make(map[*Client]bool)
			}
			h.clients[client.pageID][client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			h.updateGauge(total)
			h.log.Debug("Client connected", "page", client.pageID, "total_clients", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			h.updateGauge(total)
			h.log.Debug("Client disconnected", "page", client.pageID, "total_clients", total)
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.pageID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.pageID)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) updateGauge(n int) {
	if h.gauge != nil {
		h.gauge.SetSocketClients(n)
	}
}

// EmitToPage implements page.Emitter. It never blocks: a socket whose buffer is
// full is dropped.
func (h *Hub) EmitToPage(pageID, msgType string, payload interface{}) {
	msg := models.WSMessage{Type: msgType, Payload: payload}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for client := range h.clients[pageID] {
		select {
		case client.send <- msg:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

// HasClients reports whether any socket is open for the page
func (h *Hub) HasClients(pageID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[pageID]) > 0
}

// ClientCount returns the number of connected sockets
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

// ClosePage closes every socket of an unmounted page
func (h *Hub) ClosePage(pageID string) {
	h.mutex.Lock()
	for client := range h.clients[pageID] {
		h.removeLocked(client)
	}
	total := h.countLocked()
	h.mutex.Unlock()
	h.updateGauge(total)
}

// readPump applies messages from the websocket connection to the page
func (c *Client) readPump(p *page.Page) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}
		if p.Closed() {
			break
		}
		p.Touch()

		var msg models.InboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.reply(MsgError, map[string]string{"error": "invalid message"})
			continue
		}
		c.hub.log.Debug("Received message", "page", c.pageID, "type", msg.Type)
		if err := p.HandleMessage(msg); err != nil {
			kind := apperrors.KindOf(err)
			if kind == apperrors.ErrInternal {
				c.hub.log.Warn("Failed to apply message", "page", c.pageID, "type", msg.Type, "error", err)
			}
			c.reply(MsgError, map[string]string{"type": msg.Type, "kind": kind.String(), "error": err.Error()})
		}
	}
}

// reply sends a message to this socket only
func (c *Client) reply(msgType string, payload interface{}) {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()
	if !c.hub.clients[c.pageID][c] {
		return
	}
	select {
	case c.send <- models.WSMessage{Type: msgType, Payload: payload}:
	default:
	}
}

// writePump pumps messages from the page to the websocket connection
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode message", "type", message.Type, "error", err)
				w.Close()
				continue
			}
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
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

// ServeWs upgrades a request to a socket of the page pageID. The first message
// on the socket is the page's current view.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, pageID string) {
	p, err := h.pages.Get(pageID)
	if err != nil || p.Closed() {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		pageID: pageID,
		send:   make(chan models.WSMessage, sendBuffer),
	}
	client.send <- models.WSMessage{Type: page.MsgView, Payload: p.View()}
	h.register <- client
	p.Touch()

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump(p)
}
