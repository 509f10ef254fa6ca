package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabtrainer/internal/trainer"
	"github.com/example/vocabtrainer/pkg/models"
)

// Callback data prefixes
const (
	callbackTraining = "training:" // followed by an index into listedTrainings
	callbackGrade    = "grade:"    // followed by -1, 0, or 1
	callbackStop     = "stop_training"
	callbackMainMenu = "main_menu"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(message)
	case "help":
		return b.handleHelp(message)
	case "trainings":
		return b.handleTrainings(ctx, message.Chat.ID)
	case "new":
		return b.handleCreateTraining(ctx, message.Chat.ID, message.CommandArguments())
	case "memorize":
		return b.handleMemorize(ctx, message.Chat.ID, message.CommandArguments())
	case "stats":
		return b.handleStats(message.Chat.ID)
	case "stop":
		return b.finishTraining(ctx, message.Chat.ID)
	}
	return b.handleUnknownCommand(message)
}

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	text := "👋 ברוכים הבאים לאימון אוצר מילים!\n\n" +
		"כך זה עובד:\n" +
		"1. בוחרים אימון מהרשימה\n" +
		"2. לכל מילה מסמנים אם ידעתם אותה\n" +
		"3. מילים שלא ידעתם חוזרות בסוף התור\n" +
		"4. בסיום האימון הציונים נשמרים בשרת"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "📚 רשימת אימונים", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "📖 פקודות:\n\n" +
		"/trainings - רשימת האימונים\n" +
		"/new <יחידות> <שם> - יצירת אימון חדש, למשל: /new 1,2 מילים בסיסיות\n" +
		"/memorize <יחידה> - עיון במילים של יחידה ללא ציונים\n" +
		"/stats - התקדמות באימון הנוכחי\n" +
		"/stop - סיום האימון ושמירת הציונים\n" +
		"/help - ההודעה הזאת"
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleUnknownCommand(message *tgbotapi.Message) error {
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "פקודה לא מוכרת. נסו /help"))
}

func (b *Bot) handleTrainings(ctx context.Context, chatID int64) error {
	trainings, err := b.provider.ListTrainings(ctx)
	if err != nil {
		b.sendMessage(tgbotapi.NewMessage(chatID, "❌ לא ניתן לטעון את רשימת האימונים"))
		return fmt.Errorf("failed to list trainings: %w", err)
	}

	if len(trainings) == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "אין עדיין אימונים שמורים."))
	}

	b.listedTrainings = trainings

	var rows [][]MenuButton
	for i, training := range trainings {
		label := fmt.Sprintf("%s (%d מילים)", training.Name, training.WordCount)
		rows = append(rows, []MenuButton{
			{Text: label, CallbackData: callbackTraining + strconv.Itoa(i)},
		})
	}

	msg := tgbotapi.NewMessage(chatID, "📚 בחרו אימון:")
	msg.ReplyMarkup = createKeyboard(rows)
	return b.sendMessage(msg)
}

// handleCreateTraining creates a training from "/new <units> <name>",
// e.g. "/new 1,2 מילים בסיסיות"
func (b *Bot) handleCreateTraining(ctx context.Context, chatID int64, args string) error {
	name, fileIndexes, err := parseCreateArgs(args)
	if err != nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID,
			"שימוש: /new <יחידות> <שם>\nלמשל: /new 1,2 מילים בסיסיות"))
	}

	training, err := b.provider.CreateTraining(ctx, name, fileIndexes)
	if err != nil {
		b.sendMessage(tgbotapi.NewMessage(chatID, "❌ לא ניתן ליצור את האימון"))
		return fmt.Errorf("failed to create training %q: %w", name, err)
	}

	b.sendMessage(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("✅ האימון %q נוצר (%d מילים)", training.Name, training.WordCount)))
	return b.handleTrainings(ctx, chatID)
}

// handleMemorize lists one unit's words for browsing, without grading
func (b *Bot) handleMemorize(ctx context.Context, chatID int64, args string) error {
	fileIndex, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID,
			"שימוש: /memorize <מספר יחידה>\nלמשל: /memorize 1"))
	}

	words, err := b.provider.LoadUnit(ctx, fileIndex)
	if err != nil {
		b.sendMessage(tgbotapi.NewMessage(chatID, "❌ לא ניתן לטעון את היחידה"))
		return fmt.Errorf("failed to load unit %d: %w", fileIndex, err)
	}

	if len(words) == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID,
			fmt.Sprintf("אין מילים ביחידה %d", fileIndex)))
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, formatUnitWords(fileIndex, words)))
}

// HandleCallback handles inline keyboard button presses
func (b *Bot) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Telegram omits Message on callbacks from messages older than 48 hours;
	// there is no chat to answer into, so a stale button press is dropped
	if query.Message == nil {
		log.Printf("Ignoring callback %q without a message", query.Data)
		return nil
	}

	// Acknowledge the button press so the client stops its spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %v", err)
	}

	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == callbackMainMenu:
		return b.handleTrainings(ctx, chatID)
	case data == callbackStop:
		return b.finishTraining(ctx, chatID)
	case strings.HasPrefix(data, callbackTraining):
		index, err := strconv.Atoi(strings.TrimPrefix(data, callbackTraining))
		if err != nil || index < 0 || index >= len(b.listedTrainings) {
			return b.handleTrainings(ctx, chatID)
		}
		return b.startTraining(ctx, chatID, b.listedTrainings[index].Name)
	case strings.HasPrefix(data, callbackGrade):
		outcome, err := strconv.Atoi(strings.TrimPrefix(data, callbackGrade))
		if err != nil {
			return fmt.Errorf("bad grade callback %q: %v", data, err)
		}
		return b.handleGrade(ctx, chatID, trainer.TestOutcome(outcome))
	}
	return nil
}

// startTraining resumes a stored session for the training, or loads a fresh
// word list from the provider. Picking a training different from the stored
// session discards the stale session first.
func (b *Bot) startTraining(ctx context.Context, chatID int64, trainingName string) error {
	resumed := b.session.Resume(trainingName)
	if !resumed.TrainingComplete {
		b.sendMessage(tgbotapi.NewMessage(chatID,
			fmt.Sprintf("ממשיכים אימון קיים: %s", trainingName)))
		return b.showCurrentWord(chatID)
	}

	words, grades, err := b.provider.LoadTraining(ctx, trainingName)
	if err != nil {
		b.sendMessage(tgbotapi.NewMessage(chatID, "❌ לא ניתן לטעון את האימון"))
		return fmt.Errorf("failed to load training %q: %w", trainingName, err)
	}

	b.session.Initialize(trainingName, words, grades)
	if len(words) == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "האימון ריק - אין מילים לתרגל 🎉"))
	}

	b.sendMessage(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("מתחילים את האימון: %s (%d מילים)", trainingName, len(words))))
	return b.showCurrentWord(chatID)
}

func (b *Bot) showCurrentWord(chatID int64) error {
	word := b.session.CurrentWord()
	if word == nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "אין אימון פעיל. נסו /trainings"))
	}

	stats := b.session.Stats()
	text := fmt.Sprintf("📝 %s\n\nפירוש: %s\n\nהתקדמות: %d/%d (%.0f%%)",
		word.Word, word.Meaning, stats.CompletedWords, stats.TotalWords, stats.Progress)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "❌ לא ידעתי", CallbackData: callbackGrade + "-1"},
			{Text: "🤔 חלקית", CallbackData: callbackGrade + "0"},
			{Text: "✅ ידעתי", CallbackData: callbackGrade + "1"},
		},
		{{Text: "⏹ סיום אימון", CallbackData: callbackStop}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleGrade(ctx context.Context, chatID int64, outcome trainer.TestOutcome) error {
	result, err := b.session.SubmitGrade(outcome)
	if err != nil {
		return fmt.Errorf("failed to submit grade: %w", err)
	}

	if result.WordID != "" {
		feedback := fmt.Sprintf("ציון: %.2f ← %.2f", result.OldGrade, result.NewGrade)
		if outcome == trainer.OutcomeUnknown {
			feedback += "\nהמילה תחזור בהמשך האימון 🔁"
		}
		b.sendMessage(tgbotapi.NewMessage(chatID, feedback))
	}

	if result.TrainingComplete {
		return b.finishTraining(ctx, chatID)
	}
	return b.showCurrentWord(chatID)
}

// finishTraining pushes the session's grades to the provider and clears the
// session slot. The push itself never blocks completion: a failed push lands
// in the outbox and is replayed later.
func (b *Bot) finishTraining(ctx context.Context, chatID int64) error {
	payload := b.session.SyncPayload()
	if payload == nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "אין אימון פעיל. נסו /trainings"))
	}

	stats := b.session.Stats()
	if err := b.provider.PushSync(ctx, payload); err != nil {
		b.sendMessage(tgbotapi.NewMessage(chatID, "⚠️ שמירת הציונים נכשלה"))
	}
	b.session.Clear()

	text := fmt.Sprintf("🎉 האימון הסתיים!\n\nמילים שהושלמו: %d מתוך %d",
		stats.CompletedWords, stats.TotalWords)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "📚 לרשימת האימונים", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleStats(chatID int64) error {
	stats := b.session.Stats()
	if stats.TotalWords == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "אין אימון פעיל. נסו /trainings"))
	}

	text := fmt.Sprintf("📊 התקדמות:\n\nסה\"כ מילים: %d\nנותרו: %d\nהושלמו: %d\nהתקדמות: %.1f%%",
		stats.TotalWords, stats.RemainingWords, stats.CompletedWords, stats.Progress)
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// parseCreateArgs splits "/new" arguments: the first token is a
// comma-separated unit list, the rest is the training name
func parseCreateArgs(args string) (string, []int, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", nil, fmt.Errorf("expected units and a name, got %q", args)
	}

	var fileIndexes []int
	for _, part := range strings.Split(fields[0], ",") {
		index, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return "", nil, fmt.Errorf("invalid unit number %q", part)
		}
		fileIndexes = append(fileIndexes, index)
	}

	return strings.Join(fields[1:], " "), fileIndexes, nil
}

// maxListedWords caps the /memorize listing so one unit stays within a
// single Telegram message
const maxListedWords = 100

func formatUnitWords(fileIndex int, words []models.Word) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 יחידה %d (%d מילים):\n\n", fileIndex, len(words))
	for i, word := range words {
		if i == maxListedWords {
			fmt.Fprintf(&sb, "\n...ועוד %d מילים", len(words)-maxListedWords)
			break
		}
		fmt.Fprintf(&sb, "%s — %s\n", word.Word, word.Meaning)
	}
	return sb.String()
}
