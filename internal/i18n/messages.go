// Package i18n holds the localized human-readable messages returned in
// success and error bodies. Russian is the default locale, English is
// supported; anything else falls back to Russian.
package i18n

const DefaultLang = "ru"

var translations = map[string]map[string]string{
	"ru": {
		"user_registered":     "Пользователь успешно зарегистрирован",
		"invalid_credentials": "Неверные учетные данные",
		"test_created":        "Тест успешно создан",
		"test_updated":        "Тест успешно обновлен",
		"test_deleted":        "Тест успешно удален",
		"test_not_found":      "Тест не найден",
		"no_permission":       "Нет прав",
		"validation_error":    "Ошибка валидации",
		"user_not_found":      "Пользователь не найден",
	},
	"en": {
		"user_registered":     "User registered successfully",
		"invalid_credentials": "Invalid credentials",
		"test_created":        "Test created successfully",
		"test_updated":        "Test updated successfully",
		"test_deleted":        "Test deleted successfully",
		"test_not_found":      "Test not found",
		"no_permission":       "No permission",
		"validation_error":    "Validation error",
		"user_not_found":      "User not found",
	},
}

// T translates a message key for the given language. Unknown languages fall
// back to the default locale; unknown keys are returned as-is.
func T(lang, key string) string {
	msgs, ok := translations[lang]
	if !ok {
		msgs = translations[DefaultLang]
	}
	if msg, ok := msgs[key]; ok {
		return msg
	}
	return key
}
