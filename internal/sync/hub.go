// Package sync pushes change events to long-lived TCP and WebSocket
// subscribers. Delivery is best effort; a client that fails a write is
// dropped on the spot.
package sync

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// endpoint abstracts the two transports so the hub keeps one client
// set. writeLine gets a payload already terminated with '\n'.
type endpoint interface {
	writeLine(b []byte) error
	close()
}

type tcpEndpoint struct {
	conn net.Conn
}

func (e *tcpEndpoint) writeLine(b []byte) error {
	_ = e.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err := e.conn.Write(b)
	return err
}

func (e *tcpEndpoint) close() { _ = e.conn.Close() }

type wsEndpoint struct {
	conn *websocket.Conn
}

func (e *wsEndpoint) writeLine(b []byte) error {
	return e.conn.WriteMessage(websocket.TextMessage, b)
}

func (e *wsEndpoint) close() { _ = e.conn.Close() }

type Hub struct {
	mu  sync.Mutex
	tcp map[net.Conn]*tcpEndpoint
	ws  map[*websocket.Conn]*wsEndpoint
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]*tcpEndpoint),
		ws:  make(map[*websocket.Conn]*wsEndpoint),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = &tcpEndpoint{conn: conn}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	if e, ok := h.tcp[conn]; ok {
		delete(h.tcp, conn)
		e.close()
	}
	h.mu.Unlock()
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.ws[ws] = &wsEndpoint{conn: ws}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	if e, ok := h.ws[ws]; ok {
		delete(h.ws, ws)
		e.close()
	}
	h.mu.Unlock()
}

// Broadcast marshals the event once and fans it out to every client.
func (h *Hub) Broadcast(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, e := range h.tcp {
		if err := e.writeLine(b); err != nil {
			e.close()
			delete(h.tcp, conn)
		}
	}
	for conn, e := range h.ws {
		if err := e.writeLine(b); err != nil {
			e.close()
			delete(h.ws, conn)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tcp) + len(h.ws)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{TCPClients: len(h.tcp), WSClients: len(h.ws)}
}

func (h *Hub) Welcome(conn net.Conn) {
	msg := fmt.Sprintf("{\"type\":\"welcome\",\"message\":\"connected\",\"clients\":%d}\n", h.Count())
	_, _ = conn.Write([]byte(msg))
}
