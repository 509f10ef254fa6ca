package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/vocabtrainer/internal/storage"
	"github.com/example/vocabtrainer/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath        string // Path to the Excel or CSV file
	WordColumn      string // Column with the word
	MeaningColumn   string // Column with the meaning
	FileIndexColumn string // Column with the unit number
	SheetName       string // Name of the sheet to import
	StartRow        int    // The row to start importing from (1-based index)
	DefaultIndex    int    // Unit assigned to rows with no unit column value
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:      "A",
		MeaningColumn:   "B",
		FileIndexColumn: "C",
		SheetName:       "Sheet1",
		StartRow:        2, // By default, start from the second row (skip header)
		DefaultIndex:    1,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportWords imports words from an Excel or CSV file into the local corpus.
// Imported words get generated identifiers and start with a knowing grade
// of 0.
func ImportWords(repo *storage.WordRepository, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(repo, config)
	}
	return importFromExcel(repo, config)
}

func importFromExcel(repo *storage.WordRepository, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++
		if err := processRow(repo, rowValues(row, config), config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func importFromCSV(repo *storage.WordRepository, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		result.TotalProcessed++
		if err := processRow(repo, rowValues(row, config), config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

type importedRow struct {
	word      string
	meaning   string
	fileIndex string
}

func rowValues(row []string, config ImportConfig) importedRow {
	return importedRow{
		word:      cellValue(row, config.WordColumn),
		meaning:   cellValue(row, config.MeaningColumn),
		fileIndex: cellValue(row, config.FileIndexColumn),
	}
}

// cellValue returns the trimmed cell under the given column letter, or ""
// when the column is unset or past the end of the row
func cellValue(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func processRow(repo *storage.WordRepository, values importedRow, config ImportConfig, result *ImportResult) error {
	if values.word == "" || values.meaning == "" {
		result.Skipped++
		return nil
	}

	fileIndex := config.DefaultIndex
	if values.fileIndex != "" {
		parsed, err := strconv.Atoi(values.fileIndex)
		if err != nil {
			return fmt.Errorf("invalid unit number %q", values.fileIndex)
		}
		fileIndex = parsed
	}

	word := models.Word{
		ID:        "w_" + uuid.NewString(),
		Word:      values.word,
		Meaning:   values.meaning,
		FileIndex: fileIndex,
	}
	if err := repo.Upsert(word); err != nil {
		return err
	}
	result.Created++
	return nil
}

// columnToIndex converts a column letter (A, B, ..., Z, AA, ...) to a
// zero-based index
func columnToIndex(column string) int {
	index := 0
	for _, c := range strings.ToUpper(column) {
		index = index*26 + int(c-'A') + 1
	}
	return index - 1
}
