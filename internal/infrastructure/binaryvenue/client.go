package binaryvenue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

const orderTimeout = 20 * time.Second

// Client is the websocket binary-options venue. Connect authenticates with
// the session id; PlaceOrder is request/response over the same socket,
// correlated by request id. A dead socket is dropped and redialed on the
// next Connect.
type Client struct {
	url    string
	ssid   string
	logger *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[int64]chan orderOutcome

	reqID atomic.Int64
}

type orderOutcome struct {
	success bool
	message string
}

func NewClient(url, ssid string, logger *zap.Logger) *Client {
	return &Client{
		url:     url,
		ssid:    ssid,
		logger:  logger,
		pending: make(map[int64]chan orderOutcome),
	}
}

// Connect dials and authenticates. Idempotent while the socket is live.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial binary venue: %w", err)
	}

	auth := map[string]any{
		"action": "auth",
		"ssid":   c.ssid,
	}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return fmt.Errorf("auth binary venue: %w", err)
	}

	c.conn = conn
	go c.readLoop(conn)

	c.logger.Info("binary venue connected")
	return nil
}

// PlaceOrder submits one option order and waits for the venue's answer.
func (c *Client) PlaceOrder(ctx context.Context, asset string, amount float64, action domain.Action, durationSec int) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("binary venue not connected")
	}

	direction := "call"
	if action == domain.ActionSell {
		direction = "put"
	}

	id := c.reqID.Add(1)
	wait := make(chan orderOutcome, 1)

	c.mu.Lock()
	c.pending[id] = wait
	err := conn.WriteJSON(map[string]any{
		"action":     "open_order",
		"request_id": id,
		"asset":      asset,
		"amount":     amount,
		"direction":  direction,
		"duration":   durationSec,
	})
	c.mu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("send order: %w", err)
	}

	timer := time.NewTimer(orderTimeout)
	defer timer.Stop()

	select {
	case outcome := <-wait:
		if !outcome.success {
			return fmt.Errorf("%w: %s", domain.ErrRejected, outcome.message)
		}
		return nil
	case <-timer.C:
		c.forget(id)
		return fmt.Errorf("order response timeout for %s", asset)
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	}
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("binary venue socket closed", zap.Error(err))
			return
		}

		var event struct {
			RequestID int64  `json:"request_id"`
			Success   bool   `json:"success"`
			Message   string `json:"message"`
		}
		if err := json.Unmarshal(message, &event); err != nil {
			c.logger.Debug("unparseable venue frame", zap.Error(err))
			continue
		}
		if event.RequestID == 0 {
			continue
		}

		c.mu.Lock()
		wait, ok := c.pending[event.RequestID]
		if ok {
			delete(c.pending, event.RequestID)
		}
		c.mu.Unlock()

		if ok {
			wait <- orderOutcome{success: event.Success, message: event.Message}
		}
	}
}
