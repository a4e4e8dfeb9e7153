// Утилитарные функции общего назначения
package utils

import "net/url"

func Ptr[T any](v T) *T {
	return &v
}

func StrPtr(s string) *string {
	return &s
}

// RedactURL прячет пароль в строке подключения, чтобы её можно было писать в лог.
// Если строка не парсится как URL — возвращаем заглушку, а не исходник.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
