package service

import (
	"strings"
	"time"
)

// DefaultExpiration — срок жизни передачи по умолчанию.
// Нераспознанный селектор молча откатывается к нему — это
// зафиксированное продуктовое поведение, не ошибка валидации.
const DefaultExpiration = 10 * time.Minute

// expirationSelectors — закрытое множество селекторов срока жизни.
var expirationSelectors = map[string]time.Duration{
	"10m": 10 * time.Minute,
	"1h":  time.Hour,
	"1d":  24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

// ResolveDuration преобразует селектор срока жизни в длительность.
// Селектор нечувствителен к регистру. Нераспознанное значение
// возвращает DefaultExpiration, а не ошибку.
func ResolveDuration(selector string) time.Duration {
	if d, ok := expirationSelectors[strings.ToLower(selector)]; ok {
		return d
	}
	return DefaultExpiration
}

// ComputeDeadline возвращает абсолютный дедлайн: now + ResolveDuration(selector).
func ComputeDeadline(selector string, now time.Time) time.Time {
	return now.Add(ResolveDuration(selector))
}
