package normalize

import (
	"regexp"
	"strings"
)

var spaces = regexp.MustCompile(`\s+`)

// Title приводит текст заголовка к одной строке: NBSP → пробел,
// любые пробельные последовательности схлопываются, края обрезаются.
func Title(text string) string {
	text = strings.ReplaceAll(text, "\u00A0", " ")
	text = spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// FirstLine возвращает первую непустую строку текста
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = Title(line); line != "" {
			return line
		}
	}
	return ""
}

// NormalizeURL нормализует URL (убирает якори)
func NormalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}
