package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"conference-scraper/internal/normalize"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateTitleHash генерирует SHA256 хеш заголовка конференции.
// Формула: SHA256(lower(normalize(title))), регистр и пробелы не влияют на хеш.
func (g *Generator) GenerateTitleHash(title string) string {
	key := strings.ToLower(normalize.Title(title))
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash)
}

// VerifyTitleHash проверяет соответствие хеша
func (g *Generator) VerifyTitleHash(expectedHash, title string) bool {
	return g.GenerateTitleHash(title) == expectedHash
}
