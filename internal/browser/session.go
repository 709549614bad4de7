// Package browser предоставляет загрузку страницы и поиск узлов на ней.
// Реализации: Rod (headless Chrome через go-rod) и Static (HTTP + goquery).
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotPresent возвращается, когда селектор ничего не нашёл (или не дождался).
var ErrNotPresent = errors.New("element not present")

// Opener открывает сессию для одной страницы.
type Opener interface {
	Open(ctx context.Context, url string) (Session, error)
}

// Session — загруженная страница. Close освобождает ресурсы ровно один раз,
// повторные вызовы безопасны и возвращают nil.
type Session interface {
	WaitForPresence(selector string, timeout time.Duration) ([]Node, error)
	Close() error
}

// Node — один найденный элемент страницы.
type Node interface {
	// Text возвращает видимый текст; блочные элементы разделены переводом строки.
	Text() (string, error)
	// FindText возвращает текст первого потомка по селектору или ErrNotPresent.
	FindText(selector string) (string, error)
}
