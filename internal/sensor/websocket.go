package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/signal"
)

// WebsocketSource streams accelerometer samples from a companion device.
// The device sends one JSON object per frame: {"x":..,"y":..,"z":..,
// "timestamp":..}. A start frame tells the device the requested sample
// interval; a stop frame ends the stream.
type WebsocketSource struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

type wsControlFrame struct {
	Type       string `json:"type"` // "start" or "stop"
	IntervalMs int64  `json:"interval_ms,omitempty"`
}

// NewWebsocketSource creates a source for the given ws:// or wss:// URL.
func NewWebsocketSource(url string) *WebsocketSource {
	return &WebsocketSource{
		url:    url,
		dialer: websocket.DefaultDialer,
	}
}

// Start dials the device and begins reading sample frames.
func (w *WebsocketSource) Start(interval time.Duration, fn func(signal.Sample)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		return fmt.Errorf("websocket source already started")
	}

	conn, _, err := w.dialer.Dial(w.url, nil)
	if err != nil {
		return fmt.Errorf("dial sensor stream: %w", err)
	}

	if err := conn.WriteJSON(wsControlFrame{
		Type:       "start",
		IntervalMs: interval.Milliseconds(),
	}); err != nil {
		conn.Close()
		return fmt.Errorf("send start frame: %w", err)
	}

	w.conn = conn

	go func() {
		for {
			var sample signal.Sample
			if err := conn.ReadJSON(&sample); err != nil {
				// Stop closed the connection, or the device went away.
				// Either way the capture window just ends short.
				log.Debug().Err(err).Msg("sensor stream closed")
				return
			}
			fn(sample)
		}
	}()

	return nil
}

// Stop asks the device to end the stream and closes the connection.
func (w *WebsocketSource) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}
	_ = w.conn.WriteJSON(wsControlFrame{Type: "stop"})
	err := w.conn.Close()
	w.conn = nil
	return err
}
