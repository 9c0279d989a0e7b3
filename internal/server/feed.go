package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/mazearena/internal/core/observability/log"
)

const maxInboundSize = 512

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Feed fans encoded snapshots out to websocket spectators. Frames are never
// mutated after Publish, so every spectator shares the same slice.
type Feed struct {
	register   chan *spectator
	unregister chan *spectator
	broadcast  chan []byte

	clients map[*spectator]struct{}
	last    []byte
	count   atomic.Int64

	cfg    Config
	logger log.Log
}

type spectator struct {
	feed *Feed
	conn *websocket.Conn
	send chan []byte
}

func newFeed(cfg Config, logger log.Log) *Feed {
	return &Feed{
		register:   make(chan *spectator),
		unregister: make(chan *spectator),
		broadcast:  make(chan []byte, 1),
		clients:    make(map[*spectator]struct{}),
		cfg:        cfg,
		logger:     logger.With(log.String("component", "feed")),
	}
}

// Spectators returns the number of connected spectators.
func (f *Feed) Spectators() int { return int(f.count.Load()) }

// Publish queues a frame without blocking the simulation. When the previous
// frame has not been fanned out yet it is replaced.
func (f *Feed) Publish(frame []byte) {
	for {
		select {
		case f.broadcast <- frame:
			return
		default:
		}
		select {
		case <-f.broadcast:
		default:
		}
	}
}

func (f *Feed) run(ctx context.Context) {
	defer func() {
		for c := range f.clients {
			f.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-f.register:
			f.clients[c] = struct{}{}
			f.count.Add(1)
			if f.last != nil {
				c.offer(f.last)
			}
			f.logger.Debug("Spectator joined", log.String("remote_addr", c.conn.RemoteAddr().String()))

		case c := <-f.unregister:
			if _, ok := f.clients[c]; ok {
				f.drop(c)
			}

		case frame := <-f.broadcast:
			f.last = frame
			for c := range f.clients {
				if !c.offer(frame) {
					f.logger.Warn("Dropping slow spectator", log.String("remote_addr", c.conn.RemoteAddr().String()))
					f.drop(c)
				}
			}
		}
	}
}

func (f *Feed) drop(c *spectator) {
	delete(f.clients, c)
	close(c.send)
	f.count.Add(-1)
}

func (f *Feed) serveWS(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			f.logger.Warn("Websocket upgrade failed", log.Error(err))
			return
		}

		c := &spectator{feed: f, conn: conn, send: make(chan []byte, f.cfg.SendBuffer)}
		select {
		case f.register <- c:
		case <-ctx.Done():
			_ = conn.Close()
			return
		}

		go c.writePump()
		go c.readPump(ctx)
	}
}

func (c *spectator) offer(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// readPump discards inbound messages and keeps the read deadline fresh so
// pongs are processed.
func (c *spectator) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.feed.unregister <- c:
		case <-ctx.Done():
		}
		_ = c.conn.Close()
	}()

	pongWait := c.feed.cfg.PongWait
	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.feed.logger.Debug("Spectator read failed", log.Error(err))
			}
			return
		}
	}
}

func (c *spectator) writePump() {
	ticker := time.NewTicker(c.feed.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	writeWait := c.feed.cfg.WriteWait
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
