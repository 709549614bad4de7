// Package xlsx хранит заголовки и ссылки в одной книге Excel, по листу на вид данных.
package xlsx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"

	"conference-scraper/internal/observability"
	"conference-scraper/internal/storage"
)

// Store — дозапись в книгу по пути path. Каждый вызов открывает книгу,
// изменяет и сохраняет её целиком, поэтому между вызовами состояние не держится.
type Store struct {
	path   string
	logger *observability.Logger
}

var _ storage.Tabular = (*Store)(nil)

func NewStore(path string, logger *observability.Logger) *Store {
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Append(sheet string, rows []any) (storage.AppendResult, error) {
	if sheet == "" {
		return storage.AppendResult{}, fmt.Errorf("sheet name is required")
	}

	wb, err := s.openOrCreate(sheet)
	if err != nil {
		return storage.AppendResult{}, err
	}
	defer wb.close(s.logger)

	if err := wb.ensureSheet(sheet); err != nil {
		return storage.AppendResult{}, err
	}

	result := storage.AppendResult{Sheet: sheet, FirstRow: wb.cursors[sheet] + 1}
	for _, row := range rows {
		if err := wb.writeRow(sheet, row); err != nil {
			return storage.AppendResult{}, err
		}
		result.Written++
	}
	result.LastRow = wb.cursors[sheet]

	if err := wb.file.SaveAs(s.path); err != nil {
		return storage.AppendResult{}, fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}

	s.logger.Debug("Rows appended",
		"path", s.path,
		"sheet", sheet,
		"first_row", result.FirstRow,
		"last_row", result.LastRow,
	)
	return result, nil
}

func (s *Store) ReadColumn(sheet string, column int) ([]string, error) {
	if column < 1 {
		return nil, fmt.Errorf("column must be >= 1, got %d", column)
	}

	wb, err := s.open()
	if err != nil {
		return nil, err
	}
	defer wb.close(s.logger)

	if sheet == "" {
		sheet = wb.file.GetSheetName(wb.file.GetActiveSheetIndex())
	}
	count, ok := wb.cursors[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", storage.ErrSheetNotFound, sheet, s.path)
	}

	rows, err := wb.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	values := make([]string, 0, count)
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of %s: %w", len(values)+1, sheet, err)
		}
		value := ""
		if column <= len(cells) {
			value = cells[column-1]
		}
		values = append(values, value)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
	}

	return values, nil
}

func (s *Store) RowCount(sheet string) (int, error) {
	wb, err := s.open()
	if err != nil {
		return 0, err
	}
	defer wb.close(s.logger)

	return wb.cursors[sheet], nil
}

func (s *Store) open() (*workbook, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrStoreNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to stat workbook %s: %w", s.path, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	return loadWorkbook(f)
}

// openOrCreate открывает книгу или создаёт новую, где лист по умолчанию
// переименован в firstSheet и остаётся активным.
func (s *Store) openOrCreate(firstSheet string) (*workbook, error) {
	wb, err := s.open()
	if err == nil {
		return wb, nil
	}
	if !errors.Is(err, storage.ErrStoreNotFound) {
		return nil, err
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, firstSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	s.logger.Info("Creating workbook", "path", s.path, "sheet", firstSheet)

	return &workbook{file: f, cursors: map[string]int{firstSheet: 0}}, nil
}
