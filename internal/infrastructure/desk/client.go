package desk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

// Client talks to an MT5 terminal through its local HTTP gateway. The gateway
// exposes the terminal's trading API one endpoint per call; the session can
// silently die when the terminal restarts, so every operation goes through
// ensureSession first. Re-login when already connected is a cheap no-op on
// the gateway side.
type Client struct {
	baseURL string
	login   int64
	pass    string
	server  string

	client *http.Client
	logger *zap.Logger

	mu       sync.Mutex
	loggedIn bool

	magic   int64
	comment string
}

type Credentials struct {
	Login    int64
	Password string
	Server   string
}

func NewClient(baseURL string, creds Credentials, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		login:   creds.Login,
		pass:    creds.Password,
		server:  creds.Server,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		magic:   123456,
		comment: "signalbridge",
	}
}

func (c *Client) sendRequest(ctx context.Context, method, path string, payload any, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}

// Login authenticates against the terminal. Idempotent: a live session is
// left untouched.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err := c.sendRequest(ctx, http.MethodPost, "/login", map[string]any{
		"login":    c.login,
		"password": c.pass,
		"server":   c.server,
	}, &result)
	if err != nil {
		return fmt.Errorf("terminal login: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("terminal login refused: %s", result.Message)
	}

	c.loggedIn = true
	c.logger.Info("desk session established", zap.String("server", c.server))
	return nil
}

func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

// dropSession forces a fresh login on the next call.
func (c *Client) dropSession() {
	c.mu.Lock()
	c.loggedIn = false
	c.mu.Unlock()
}

func (c *Client) Instruments(ctx context.Context) ([]string, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	var result struct {
		Symbols []string `json:"symbols"`
	}
	if err := c.sendRequest(ctx, http.MethodGet, "/symbols", nil, &result); err != nil {
		c.dropSession()
		return nil, err
	}
	return result.Symbols, nil
}

func (c *Client) SymbolInfo(ctx context.Context, symbol string) (*domain.Instrument, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	var inst domain.Instrument
	if err := c.sendRequest(ctx, http.MethodGet, "/symbol_info?symbol="+symbol, nil, &inst); err != nil {
		c.dropSession()
		return nil, err
	}
	if inst.Name == "" {
		inst.Name = symbol
	}
	return &inst, nil
}

func (c *Client) AccountBalance(ctx context.Context) (float64, error) {
	if err := c.ensureSession(ctx); err != nil {
		return 0, err
	}

	var result struct {
		Balance float64 `json:"balance"`
	}
	if err := c.sendRequest(ctx, http.MethodGet, "/account", nil, &result); err != nil {
		c.dropSession()
		return 0, err
	}
	return result.Balance, nil
}

func (c *Client) CurrentTick(ctx context.Context, symbol string) (*domain.Tick, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	var tick domain.Tick
	if err := c.sendRequest(ctx, http.MethodGet, "/tick?symbol="+symbol, nil, &tick); err != nil {
		c.dropSession()
		return nil, err
	}
	return &tick, nil
}

func (c *Client) MarketOrder(ctx context.Context, symbol string, action domain.Action, lot, takeProfit, stopLoss float64) (*domain.OrderResult, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	orderType := "buy"
	if action == domain.ActionSell {
		orderType = "sell"
	}

	var result struct {
		Success bool   `json:"success"`
		Ticket  int64  `json:"ticket"`
		Reason  string `json:"reason"`
	}
	err := c.sendRequest(ctx, http.MethodPost, "/order", map[string]any{
		"symbol":  symbol,
		"type":    orderType,
		"volume":  lot,
		"sl":      stopLoss,
		"tp":      takeProfit,
		"magic":   c.magic,
		"comment": c.comment,
	}, &result)
	if err != nil {
		c.dropSession()
		return nil, err
	}

	return &domain.OrderResult{
		Success: result.Success,
		Ticket:  result.Ticket,
		Reason:  result.Reason,
	}, nil
}

func (c *Client) ModifyStop(ctx context.Context, ticket int64, newStop float64) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	var result struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	err := c.sendRequest(ctx, http.MethodPost, "/modify_stop", map[string]any{
		"ticket": ticket,
		"sl":     newStop,
	}, &result)
	if err != nil {
		c.dropSession()
		return err
	}
	if !result.Success {
		return fmt.Errorf("stop modification refused for ticket %d: %s", ticket, result.Reason)
	}
	return nil
}

func (c *Client) OpenTickets(ctx context.Context) (map[int64]bool, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	var result struct {
		Tickets []int64 `json:"tickets"`
	}
	if err := c.sendRequest(ctx, http.MethodGet, "/positions", nil, &result); err != nil {
		c.dropSession()
		return nil, err
	}

	open := make(map[int64]bool, len(result.Tickets))
	for _, t := range result.Tickets {
		open[t] = true
	}
	return open, nil
}

func (c *Client) ClosedDealsSince(ctx context.Context, since time.Time) ([]domain.Deal, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/history_deals?from=%d", since.Unix())
	var result struct {
		Deals []struct {
			ID       int64   `json:"id"`
			Symbol   string  `json:"symbol"`
			Profit   float64 `json:"profit"`
			ClosedAt int64   `json:"closed_at"`
		} `json:"deals"`
	}
	if err := c.sendRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		c.dropSession()
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(result.Deals))
	for _, d := range result.Deals {
		deals = append(deals, domain.Deal{
			ID:       d.ID,
			Symbol:   d.Symbol,
			Profit:   d.Profit,
			ClosedAt: time.Unix(d.ClosedAt, 0),
		})
	}
	return deals, nil
}

func (c *Client) Candles(ctx context.Context, symbol string, limit int) ([]domain.Candle, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/candles?symbol=%s&timeframe=M15&limit=%d", symbol, limit)
	var result struct {
		Candles []domain.Candle `json:"candles"`
	}
	if err := c.sendRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		c.dropSession()
		return nil, err
	}
	return result.Candles, nil
}
