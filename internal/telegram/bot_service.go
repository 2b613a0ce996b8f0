// Package telegram handles the integration with the Telegram Bot API.
// It is responsible for receiving updates from Telegram, processing them,
// and communicating with the central chat hub.
package telegram

import (
	"context"
	"errors"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/localization"
	"strangerchat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const updateTimeout = 60

// BotAPI is the subset of *tgbotapi.BotAPI the service uses.
type BotAPI interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotService is responsible for receiving Telegram updates and routing them to the hub.
type BotService struct {
	Bot        BotAPI
	Hub        *chathub.ManagerService
	Localizer  *localization.Localizer
	BufferSize int
}

// NewBotService authorizes against the Bot API and creates a BotService.
func NewBotService(token string, hub *chathub.ManagerService, localizer *localization.Localizer, bufferSize int) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Info().Str("account", bot.Self.UserName).Msg("Telegram bot authorized")

	return &BotService{
		Bot:        bot,
		Hub:        hub,
		Localizer:  localizer,
		BufferSize: bufferSize,
	}, nil
}

// Run is the main loop for receiving Telegram updates. It returns when ctx is
// done or the update channel closes.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := s.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.Bot.StopReceivingUpdates()
			log.Info().Msg("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				s.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage classifies one private message into a command or a payload
// and submits it to the hub. /privacy, /help and unknown commands are
// answered directly.
func (s *BotService) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}
	c := s.getOrCreateClient(msg.From)

	ev := models.InboundEvent{UserID: c.GetUserID()}
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			ev.Command = models.CommandJoin
		case "stop":
			ev.Command = models.CommandLeave
		case "next":
			ev.Command = models.CommandRotate
		case "privacy", "help":
			s.reply(c, msg.Command())
			return
		default:
			s.reply(c, "unknown_command")
			return
		}
	} else {
		ev.Payload = ExtractPayload(msg)
	}

	if err := s.Hub.Submit(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("user_id", ev.UserID.String()).Msg("Failed to submit Telegram event")
	}
}

// getOrCreateClient returns the registered client for a Telegram user or
// registers a new one. The user's current language code is applied either way.
func (s *BotService) getOrCreateClient(from *tgbotapi.User) *Client {
	lang := s.Localizer.Resolve(from.LanguageCode)
	userID := models.TelegramUserID(from.ID)

	if existing, ok := s.Hub.Client(userID); ok {
		if client, ok := existing.(*Client); ok {
			client.SetLanguage(lang)
			return client
		}
		log.Error().Str("user_id", userID.String()).Msg("Registered client is not a *telegram.Client, replacing")
	}

	// Private chat IDs equal user IDs.
	client := NewClient(from.ID, s.Bot, s.Localizer, lang, s.BufferSize)
	s.Hub.Register(client)
	client.Run()
	return client
}

func (s *BotService) reply(c *Client, key string) {
	text := s.Localizer.GetString(c.Language(), key)
	if _, err := s.Bot.Send(tgbotapi.NewMessage(c.ChatID, text)); err != nil {
		log.Warn().Err(err).Str("user_id", c.UserID.String()).Str("key", key).Msg("Telegram reply failed")
	}
}

// ExtractPayload turns a message into a payload. Text, stickers, photos
// (largest size) and voice notes are relayable; anything else yields a
// payload whose kind names the unsupported content.
func ExtractPayload(msg *tgbotapi.Message) models.Payload {
	switch {
	case msg.Text != "":
		return models.TextPayload(msg.Text)
	case msg.Sticker != nil:
		return models.StickerPayload(msg.Sticker.FileID)
	case len(msg.Photo) > 0:
		return models.PhotoPayload(msg.Photo[len(msg.Photo)-1].FileID, msg.Caption)
	case msg.Voice != nil:
		return models.VoicePayload(msg.Voice.FileID, msg.Caption)
	}
	return models.Payload{Kind: unsupportedKind(msg)}
}

func unsupportedKind(msg *tgbotapi.Message) models.PayloadKind {
	switch {
	case msg.Video != nil:
		return "video"
	case msg.VideoNote != nil:
		return "video_note"
	case msg.Animation != nil:
		return "animation"
	case msg.Audio != nil:
		return "audio"
	case msg.Document != nil:
		return "document"
	case msg.Location != nil, msg.Venue != nil:
		return "location"
	case msg.Contact != nil:
		return "contact"
	case msg.Poll != nil:
		return "poll"
	case msg.Dice != nil:
		return "dice"
	}
	return "unknown"
}
