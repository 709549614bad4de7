package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"conference-scraper/internal/observability"
)

// workbook — открытая книга и курсоры листов: номер последней занятой строки.
// Курсоры считываются один раз при открытии и дальше только растут.
type workbook struct {
	file       *excelize.File
	cursors    map[string]int
	blankStyle int
}

func loadWorkbook(f *excelize.File) (*workbook, error) {
	wb := &workbook{file: f, cursors: make(map[string]int)}
	for _, sheet := range f.GetSheetList() {
		count, err := countRows(f, sheet)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		wb.cursors[sheet] = count
	}
	return wb, nil
}

// countRows возвращает номер последней строки, присутствующей в листе,
// включая строки с пустыми значениями.
func countRows(f *excelize.File, sheet string) (int, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Error(); err != nil {
		return 0, fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
	}
	return count, nil
}

func (wb *workbook) ensureSheet(sheet string) error {
	if _, ok := wb.cursors[sheet]; ok {
		return nil
	}
	if _, err := wb.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	wb.cursors[sheet] = 0
	return nil
}

// writeRow пишет одну строку под курсором и сдвигает курсор.
func (wb *workbook) writeRow(sheet string, row any) error {
	rowNum := wb.cursors[sheet] + 1

	var values []any
	switch v := row.(type) {
	case []any:
		values = v
	case []string:
		values = make([]any, len(v))
		for i := range v {
			values[i] = v[i]
		}
	default:
		values = []any{v}
	}

	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := wb.setCell(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	// Пустая строка должна пережить сохранение, иначе выравнивание листов по строкам собьётся
	if len(values) == 0 {
		if err := wb.setCell(sheet, fmt.Sprintf("A%d", rowNum), nil); err != nil {
			return err
		}
	}

	wb.cursors[sheet] = rowNum
	return nil
}

func (wb *workbook) setCell(sheet, cell string, value any) error {
	if value == nil || value == "" {
		// excelize выбрасывает ячейки без значения и без стиля при сохранении
		style, err := wb.placeholderStyle()
		if err != nil {
			return err
		}
		if err := wb.file.SetCellValue(sheet, cell, ""); err != nil {
			return err
		}
		return wb.file.SetCellStyle(sheet, cell, cell, style)
	}
	return wb.file.SetCellValue(sheet, cell, value)
}

func (wb *workbook) placeholderStyle() (int, error) {
	if wb.blankStyle != 0 {
		return wb.blankStyle, nil
	}
	style, err := wb.file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	wb.blankStyle = style
	return style, nil
}

func (wb *workbook) close(logger *observability.Logger) {
	if err := wb.file.Close(); err != nil {
		logger.Warn("Failed to close workbook", "error", err.Error())
	}
}
