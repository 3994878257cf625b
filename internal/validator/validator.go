package validator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const defaultScheme = "http://"

var validate = validator.New()

// Схема допустима только в начале строки; "://" в пути или query её не означает
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizeURL обрезает пробелы и добавляет http://, если схема не указана
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || schemePrefix.MatchString(raw) {
		return raw
	}
	return defaultScheme + raw
}

// ValidateURL возвращает true, если после нормализации строка разбирается
// в URL с непустыми схемой и хостом. Ошибка разбора означает невалидный URL.
func ValidateURL(candidate string) bool {
	normalized := NormalizeURL(candidate)
	if normalized == "" {
		return false
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return false
	}

	return parsed.Scheme != "" && parsed.Host != ""
}

// ValidateCustomCode проверяет, что код непустой и состоит только из латинских букв и цифр.
// Длину проверяет сервис.
func ValidateCustomCode(candidate string) bool {
	return validate.Var(candidate, "required,alphanum") == nil
}
