// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "spectra/internal/log"
)

// WebSocketTransport broadcasts render paths as JSON frames to all connected
// WebSocket clients. Renderers connect to /spectrum and receive one message
// per analysis tick.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	done      chan struct{}
	closeOnce sync.Once
	server    *http.Server
}

// NewWebSocketTransport creates the transport and starts its HTTP server on
// the given port.
func NewWebSocketTransport(port string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: ":" + port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Renderers may live anywhere during development
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}

	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", wst.handleWebSocket)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("WebSocketTransport: Listening on %s", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

// handleWebSocket upgrades HTTP connections to WebSocket and tracks the
// client until it disconnects.
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client connected, total: %d", total)

	go func() {
		// The read loop exists only to detect disconnect; clients send nothing.
		_, _, err := conn.ReadMessage()
		if err != nil {
			wst.clientsMu.Lock()
			delete(wst.clients, conn)
			total := len(wst.clients)
			wst.clientsMu.Unlock()
			conn.Close()
			applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
		}
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Warnf("WebSocketTransport: Error sending to client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		case <-wst.done:
			return
		}
	}
}

// Send queues data for broadcast to all connected clients. When the
// broadcast channel is full the frame is dropped; a stale path is worthless
// to a live display.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case <-wst.done:
		return fmt.Errorf("WebSocketTransport: transport is closed")
	default:
	}

	select {
	case wst.broadcast <- data:
	default:
		applog.Debugf("WebSocketTransport: broadcast queue full, dropping frame")
	}
	return nil
}

// Close stops the broadcast goroutine, disconnects all clients and shuts
// down the server. Safe to call multiple times.
func (wst *WebSocketTransport) Close() error {
	applog.Infof("WebSocketTransport: Closing server")

	wst.closeOnce.Do(func() {
		close(wst.done)
	})

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)
