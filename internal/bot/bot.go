package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabtrainer/internal/trainer"
	"github.com/example/vocabtrainer/pkg/models"
)

// TrainingProvider is the source of trainings and the sink for finished
// sessions. It is either the local store or the remote backend client.
type TrainingProvider interface {
	ListTrainings(ctx context.Context) ([]models.Training, error)
	CreateTraining(ctx context.Context, name string, fileIndexes []int) (*models.Training, error)
	LoadTraining(ctx context.Context, name string) ([]models.Word, map[string]float64, error)
	LoadUnit(ctx context.Context, fileIndex int) ([]models.Word, error)
	PushSync(ctx context.Context, payload *models.SyncPayload) error
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot drives training sessions over Telegram. It serves a single learner:
// there is one training session slot, shared with the rest of the
// application, and the bot is its only interactive writer.
type Bot struct {
	api      *tgbotapi.BotAPI
	provider TrainingProvider
	session  *trainer.Session

	// trainings shown in the last /trainings listing, so callback data can
	// carry a short index instead of a (possibly long) Hebrew name
	listedTrainings []models.Training
}

// New creates a new bot instance
func New(token string, provider TrainingProvider, session *trainer.Session) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}

	log.Printf("Authorized on Telegram account %s", api.Self.UserName)
	return &Bot{
		api:      api,
		provider: provider,
		session:  session,
	}, nil
}

// Start begins processing updates until the context is canceled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		log.Printf("Error handling update: %v", err)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}
