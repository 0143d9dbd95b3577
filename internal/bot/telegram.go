package bot

import (
	"context"
	"fmt"
	"os"

	tg "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/spotfetch/spotfetch/internal/models"
)

// Bot wires the Telegram long-polling client to a [Dispatcher].
type Bot struct {
	client     *tg.Bot
	dispatcher *Dispatcher
}

// New creates the Telegram client, binds its sender to the dispatcher, and
// registers the dispatcher as the default update handler.
func New(token string, dispatcher *Dispatcher) (*Bot, error) {
	b := &Bot{dispatcher: dispatcher}

	client, err := tg.New(token, tg.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	b.client = client
	dispatcher.BindSender(&telegramSender{client: client})
	return b, nil
}

// Start begins long polling and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.client.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tg.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	b.dispatcher.Handle(ctx, models.Inbound{
		ChatID:    update.Message.Chat.ID,
		FirstName: update.Message.Chat.FirstName,
		Text:      update.Message.Text,
	})
}

// telegramSender implements [Sender] on the Telegram API.
type telegramSender struct {
	client *tg.Bot
}

func (s *telegramSender) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := s.client.SendMessage(ctx, &tg.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

func (s *telegramSender) SendFile(ctx context.Context, chatID int64, path, displayName string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	_, err = s.client.SendDocument(ctx, &tg.SendDocumentParams{
		ChatID:   chatID,
		Document: &tgmodels.InputFileUpload{Filename: displayName, Data: file},
	})
	return err
}
