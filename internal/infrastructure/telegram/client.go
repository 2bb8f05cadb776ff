package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mvoss/signalbridge/internal/domain"
)

const (
	apiBase     = "https://api.telegram.org"
	pollTimeout = 30 // long-poll seconds, server side
)

// Client is both the inbound signal source (long-polled channel updates) and
// the outbound operator notifier. Telegram throttles bot sends hard, so
// Notify goes through a rate limiter rather than relying on 429 retries.
type Client struct {
	api          *resty.Client
	channels     map[int64]bool
	operatorChat int64
	limiter      *rate.Limiter
	logger       *zap.Logger

	offset   int64
	messages chan domain.ChannelMessage
}

func NewClient(token string, channelIDs []int64, operatorChat int64, logger *zap.Logger) *Client {
	channels := make(map[int64]bool, len(channelIDs))
	for _, id := range channelIDs {
		channels[id] = true
	}

	api := resty.New().
		SetBaseURL(apiBase + "/bot" + token).
		SetTimeout(time.Duration(pollTimeout+15) * time.Second)

	return &Client{
		api:          api,
		channels:     channels,
		operatorChat: operatorChat,
		limiter:      rate.NewLimiter(rate.Limit(1), 3), // ~1 msg/s, burst 3
		logger:       logger,
		messages:     make(chan domain.ChannelMessage, 64),
	}
}

// Messages is the stream of raw texts from the configured channels.
func (c *Client) Messages() <-chan domain.ChannelMessage {
	return c.messages
}

// Run long-polls getUpdates until ctx is cancelled. Transient API failures
// back off briefly and continue; only startup auth problems are returned.
func (c *Client) Run(ctx context.Context) error {
	if err := c.checkAuth(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			close(c.messages)
			return nil
		default:
		}

		updates, err := c.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				close(c.messages)
				return nil
			}
			c.logger.Warn("getUpdates failed", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= c.offset {
				c.offset = u.UpdateID + 1
			}

			msg := u.ChannelPost
			if msg == nil {
				msg = u.Message
			}
			if msg == nil || msg.Text == "" {
				continue
			}
			if !c.channels[msg.Chat.ID] {
				continue
			}

			select {
			case c.messages <- domain.ChannelMessage{ChatID: msg.Chat.ID, Text: msg.Text}:
			default:
				c.logger.Warn("message buffer full, dropping signal",
					zap.Int64("chat", msg.Chat.ID))
			}
		}
	}
}

// Notify sends a DM to the operator chat.
func (c *Client) Notify(ctx context.Context, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var result apiResponse[struct{}]
	resp, err := c.api.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": strconv.FormatInt(c.operatorChat, 10),
			"text":    text,
		}).
		SetResult(&result).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("sendMessage refused: %s", result.Description)
	}
	return nil
}

func (c *Client) checkAuth(ctx context.Context) error {
	var result apiResponse[struct {
		Username string `json:"username"`
	}]
	resp, err := c.api.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/getMe")
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram auth refused: %s", result.Description)
	}

	c.logger.Info("telegram session live", zap.String("bot", result.Result.Username))
	return nil
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      T      `json:"result"`
}

type update struct {
	UpdateID    int64    `json:"update_id"`
	Message     *message `json:"message"`
	ChannelPost *message `json:"channel_post"`
}

type message struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

func (c *Client) getUpdates(ctx context.Context) ([]update, error) {
	var out apiResponse[[]update]
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":          strconv.FormatInt(c.offset, 10),
			"timeout":         strconv.Itoa(pollTimeout),
			"allowed_updates": `["message","channel_post"]`,
		}).
		SetResult(&out).
		Get("/getUpdates")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || !out.OK {
		return nil, fmt.Errorf("getUpdates refused: %s", out.Description)
	}
	return out.Result, nil
}
