package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Алфавиты генерации кодов.
// shortCodeAlphabet — URL-safe, без похожих символов не фильтруем:
// код копируется по ссылке, а не вводится вручную.
// visitCodeAlphabet — uppercase: visit code вводится вручную,
// исключены неоднозначные символы 0/O и 1/I.
const (
	shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	visitCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	shortCodeLength = 8
	visitCodeLength = 6
)

// CodeGenerator — генератор short code и visit code.
// Интерфейс позволяет подменять генерацию в тестах.
type CodeGenerator interface {
	// ShortCode возвращает новый публичный идентификатор передачи (8 символов).
	ShortCode() (string, error)
	// VisitCode возвращает новый код доступа (6 символов, uppercase).
	VisitCode() (string, error)
}

// randomCodeGenerator — генератор на основе crypto/rand.
type randomCodeGenerator struct{}

// NewCodeGenerator создаёт генератор кодов с криптографическим источником энтропии.
func NewCodeGenerator() CodeGenerator {
	return &randomCodeGenerator{}
}

// ShortCode возвращает 8-символьный URL-safe идентификатор.
func (g *randomCodeGenerator) ShortCode() (string, error) {
	return randomString(shortCodeAlphabet, shortCodeLength)
}

// VisitCode возвращает 6-символьный uppercase код доступа.
func (g *randomCodeGenerator) VisitCode() (string, error) {
	return randomString(visitCodeAlphabet, visitCodeLength)
}

// randomString собирает строку заданной длины из символов алфавита.
// crypto/rand.Int исключает modulo bias.
func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("ошибка чтения энтропии: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
