package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "meowpremium-bot/internal/common/errors"
	"meowpremium-bot/internal/common/logger"
)

const apiBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API. It exposes exactly the calls the bot
// needs: send text/photo, edit in place, forward verbatim, answer callbacks,
// and the update-delivery plumbing (webhook or long poll).
type Client struct {
	http  *resty.Client
	token string
}

func NewClient(token string) *Client {
	rc := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", apiBase, token)).
		SetTimeout(35 * time.Second). // above the long-poll window
		SetHeader("Content-Type", "application/json")
	return &Client{http: rc, token: token}
}

// Token returns the bot credential; the webhook route path embeds it.
func (c *Client) Token() string { return c.token }

type apiResponse struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// call performs one Bot API method and decodes result into out when non-nil.
func (c *Client) call(ctx context.Context, method string, body interface{}, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/" + method)
	if err != nil {
		return apperrors.NewTelegramAPIError(method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return apperrors.NewTelegramAPIError(method,
			fmt.Errorf("decode response (status %d): %w", resp.StatusCode(), err))
	}
	if !parsed.Ok {
		return apperrors.NewTelegramAPIError(method,
			fmt.Errorf("api error %d: %s", parsed.ErrorCode, parsed.Description))
	}
	if out != nil && len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return apperrors.NewTelegramAPIError(method, fmt.Errorf("decode result: %w", err))
		}
	}
	return nil
}

type sendMessageRequest struct {
	ChatID      int64       `json:"chat_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

// SendMessage delivers text to a chat. markup may be *InlineKeyboardMarkup,
// *ReplyKeyboardMarkup, or nil.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (*Message, error) {
	var msg Message
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: markup,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type sendPhotoRequest struct {
	ChatID      int64       `json:"chat_id"`
	Photo       string      `json:"photo"`
	Caption     string      `json:"caption,omitempty"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

// SendPhoto re-sends an already-uploaded photo by file id with a caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) (*Message, error) {
	var msg Message
	err := c.call(ctx, "sendPhoto", sendPhotoRequest{
		ChatID:      chatID,
		Photo:       fileID,
		Caption:     caption,
		ParseMode:   "Markdown",
		ReplyMarkup: markup,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type forwardMessageRequest struct {
	ChatID     int64 `json:"chat_id"`
	FromChatID int64 `json:"from_chat_id"`
	MessageID  int64 `json:"message_id"`
}

// ForwardMessage copies a message verbatim into another chat.
func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*Message, error) {
	var msg Message
	err := c.call(ctx, "forwardMessage", forwardMessageRequest{
		ChatID:     chatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type editMessageTextRequest struct {
	ChatID      int64       `json:"chat_id"`
	MessageID   int64       `json:"message_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

// EditMessageText rewrites a previously sent message in place. Passing a nil
// markup strips any inline keyboard from the message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	req := editMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: "Markdown",
	}
	if markup != nil {
		req.ReplyMarkup = markup
	}
	return c.call(ctx, "editMessageText", req, nil)
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

// AnswerCallback acknowledges a callback query, optionally with a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}, nil)
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        30,
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SetWebhook registers the push endpoint with Telegram.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	logger.Info().Str("url", url).Msg("Registering webhook")
	return c.call(ctx, "setWebhook", setWebhookRequest{
		URL:            url,
		AllowedUpdates: []string{"message", "callback_query"},
	}, nil)
}

// DeleteWebhook removes a previously registered webhook so that long polling
// can take over update delivery.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}

// IsUnreachableRecipient reports whether err means the recipient blocked the
// bot or deactivated the account, the common per-recipient broadcast failure.
func IsUnreachableRecipient(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Cause == nil {
		return false
	}
	msg := appErr.Cause.Error()
	return strings.Contains(msg, "bot was blocked") ||
		strings.Contains(msg, "user is deactivated") ||
		strings.Contains(msg, "chat not found") ||
		strings.Contains(msg, fmt.Sprintf("api error %d", http.StatusForbidden))
}
