package bot

import (
	"context"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabtrainer/pkg/models"
)

func TestParseCreateArgs(t *testing.T) {
	name, indexes, err := parseCreateArgs("1,2 מילים בסיסיות")
	require.NoError(t, err)
	assert.Equal(t, "מילים בסיסיות", name)
	assert.Equal(t, []int{1, 2}, indexes)

	name, indexes, err = parseCreateArgs("3 advanced")
	require.NoError(t, err)
	assert.Equal(t, "advanced", name)
	assert.Equal(t, []int{3}, indexes)
}

func TestParseCreateArgs_Invalid(t *testing.T) {
	for _, args := range []string{"", "1,2", "only-a-name", "a,b שם"} {
		_, _, err := parseCreateArgs(args)
		assert.Error(t, err, "args %q", args)
	}
}

func TestFormatUnitWords(t *testing.T) {
	words := []models.Word{
		{ID: "w_1", Word: "hello", Meaning: "שלום", FileIndex: 1},
		{ID: "w_2", Word: "world", Meaning: "עולם", FileIndex: 1},
	}

	text := formatUnitWords(1, words)
	assert.Contains(t, text, "hello — שלום")
	assert.Contains(t, text, "world — עולם")
	assert.Contains(t, text, "2 מילים")
}

func TestFormatUnitWords_TruncatesLongUnits(t *testing.T) {
	var words []models.Word
	for i := 0; i < maxListedWords+5; i++ {
		words = append(words, models.Word{
			ID:   fmt.Sprintf("w_%d", i),
			Word: fmt.Sprintf("word%d", i),
		})
	}

	text := formatUnitWords(2, words)
	assert.Contains(t, text, fmt.Sprintf("word%d", maxListedWords-1))
	assert.NotContains(t, text, fmt.Sprintf("word%d\n", maxListedWords))
	assert.Contains(t, text, "ועוד 5 מילים")
}

func TestHandleCallback_StaleQueryWithoutMessage(t *testing.T) {
	// Telegram drops Message from callbacks older than 48 hours; pressing
	// such a button must not crash the update loop
	b := &Bot{}
	query := &tgbotapi.CallbackQuery{ID: "stale", Data: callbackGrade + "1"}

	err := b.HandleCallback(context.Background(), query)
	assert.NoError(t, err)
}
