package middleware

import (
	"strings"

	"testboard/internal/i18n"

	"github.com/gofiber/fiber/v2"
)

// LangKey is the fiber.Ctx locals key holding the resolved response language.
const LangKey = "lang"

// Locale resolves the response language from the Accept-Language header.
// Only the primary subtag is considered; unsupported languages fall back to
// the default locale.
func Locale() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LangKey, parseLang(c.Get(fiber.HeaderAcceptLanguage)))
		return c.Next()
	}
}

// RequestLang returns the language resolved by Locale, or the default when
// the middleware did not run.
func RequestLang(c *fiber.Ctx) string {
	if lang, ok := c.Locals(LangKey).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLang
}

func parseLang(header string) string {
	// "en-US,en;q=0.9,ru;q=0.8" -> "en"
	first := header
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, '-'); i >= 0 {
		first = first[:i]
	}
	lang := strings.ToLower(strings.TrimSpace(first))
	if lang == "en" || lang == "ru" {
		return lang
	}
	return i18n.DefaultLang
}
