package scraper

import (
	"errors"
	"fmt"
)

// ErrNotFound — стратегия отработала без ошибки, но ничего не нашла.
var ErrNotFound = errors.New("not found")

// Strategy — один способ получить Out из In.
type Strategy[In, Out any] struct {
	Name string
	Run  func(In) (Out, error)
}

// Result — исход перебора: либо значение, либо явное «не найдено».
type Result[T any] struct {
	Value    T
	Found    bool
	Strategy string
}

// FirstSuccess пробует стратегии по порядку и возвращает первый непустой результат.
// Следующие стратегии после успеха не вызываются. onFail получает имя и причину
// каждой неудачи (ошибка или пустой результат → ErrNotFound).
func FirstSuccess[In, Out any](
	in In,
	strategies []Strategy[In, Out],
	isEmpty func(Out) bool,
	onFail func(name string, err error),
) Result[Out] {
	for _, st := range strategies {
		out, err := runStrategy(st, in)
		if err == nil && isEmpty(out) {
			err = ErrNotFound
		}
		if err != nil {
			if onFail != nil {
				onFail(st.Name, err)
			}
			continue
		}
		return Result[Out]{Value: out, Found: true, Strategy: st.Name}
	}
	return Result[Out]{}
}

// runStrategy превращает панику стратегии в ошибку
func runStrategy[In, Out any](st Strategy[In, Out], in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", st.Name, r)
		}
	}()
	return st.Run(in)
}
