package telegram

import (
	"strangerchat/backend/internal/localization"
	"strangerchat/backend/internal/models"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Sender is the part of the Bot API a client writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client implements chathub.Client for a private Telegram chat.
type Client struct {
	UserID    models.UserID
	ChatID    int64
	Send      chan models.ChatMessage
	Bot       Sender
	Localizer *localization.Localizer

	mu        sync.RWMutex
	lang      string
	closeOnce sync.Once
}

// NewClient creates a client for the private chat chatID.
func NewClient(chatID int64, bot Sender, localizer *localization.Localizer, lang string, bufferSize int) *Client {
	return &Client{
		UserID:    models.TelegramUserID(chatID),
		ChatID:    chatID,
		Send:      make(chan models.ChatMessage, bufferSize),
		Bot:       bot,
		Localizer: localizer,
		lang:      lang,
	}
}

func (c *Client) GetUserID() models.UserID                  { return c.UserID }
func (c *Client) GetSendChannel() chan<- models.ChatMessage { return c.Send }

// Run starts the write pump. Inbound updates are read centrally by BotService.
func (c *Client) Run() {
	go c.writePump()
}

// Close closes the Send channel.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Language is the language notifications are rendered in.
func (c *Client) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lang
}

func (c *Client) SetLanguage(lang string) {
	c.mu.Lock()
	c.lang = lang
	c.mu.Unlock()
}

// Render builds the Bot API call for an outbound message. Payloads are always
// sent as new messages, never forwarded.
func (c *Client) Render(message models.ChatMessage) (tgbotapi.Chattable, bool) {
	if kind, ok := message.Event(); ok {
		text := c.Localizer.GetString(c.Language(), kind.LocalizationKey())
		return tgbotapi.NewMessage(c.ChatID, text), true
	}

	p := message.Payload()
	switch p.Kind {
	case models.PayloadText:
		return tgbotapi.NewMessage(c.ChatID, p.Content), true
	case models.PayloadSticker:
		return tgbotapi.NewSticker(c.ChatID, tgbotapi.FileID(p.Content)), true
	case models.PayloadPhoto:
		photo := tgbotapi.NewPhoto(c.ChatID, tgbotapi.FileID(p.Content))
		photo.Caption = p.Caption
		return photo, true
	case models.PayloadVoice:
		voice := tgbotapi.NewVoice(c.ChatID, tgbotapi.FileID(p.Content))
		voice.Caption = p.Caption
		return voice, true
	}
	return nil, false
}

// writePump drains Send and performs the Bot API calls until Send is closed.
func (c *Client) writePump() {
	defer func() {
		log.Debug().Str("user_id", c.UserID.String()).Msg("Telegram write pump stopped")
	}()

	for message := range c.Send {
		out, ok := c.Render(message)
		if !ok {
			log.Warn().Str("user_id", c.UserID.String()).Str("type", message.Type).Msg("Unrenderable message dropped")
			continue
		}
		if _, err := c.Bot.Send(out); err != nil {
			log.Warn().Err(err).Str("user_id", c.UserID.String()).Str("type", message.Type).Msg("Telegram send failed")
		}
	}
}
