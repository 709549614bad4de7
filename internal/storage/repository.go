package storage

import (
	"context"
	"errors"
)

var (
	// ErrStoreNotFound — файла хранилища ещё нет (ни одной записи не было)
	ErrStoreNotFound = errors.New("store not found")
	// ErrSheetNotFound — файл есть, но запрошенного листа в нём нет
	ErrSheetNotFound = errors.New("sheet not found")
)

// AppendResult описывает, какие строки листа заняла одна дозапись.
type AppendResult struct {
	Sheet    string
	FirstRow int // 1-based; при пустой дозаписи равен LastRow+1
	LastRow  int // номер последней занятой строки листа после дозаписи
	Written  int
}

// Tabular — многолистовое табличное хранилище, в которое только дописывают.
type Tabular interface {
	// Append дописывает строки в конец листа, создавая файл и лист при необходимости.
	// Элемент rows, являющийся []any или []string, раскладывается по колонкам с первой.
	Append(sheet string, rows []any) (AppendResult, error)
	// ReadColumn читает колонку (1-based) сверху вниз; sheet == "" — активный лист.
	ReadColumn(sheet string, column int) ([]string, error)
	// RowCount — число строк листа; 0, если листа нет.
	RowCount(sheet string) (int, error)
}

// TitleLink — заголовок и найденная для него ссылка (может быть пустой)
type TitleLink struct {
	Title string
	Link  string
}

// Mirror дублирует записанные данные во внешнее хранилище. Необязателен.
type Mirror interface {
	SaveTitles(ctx context.Context, runID string, page int, titles []string) error
	SaveLinks(ctx context.Context, runID string, links []TitleLink) error
	Close() error
}
