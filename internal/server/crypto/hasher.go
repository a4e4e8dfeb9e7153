package crypto

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
)

// bcrypt учитывает только первые 72 байта пароля, длиннее x/crypto не принимает.
const bcryptMaxBytes = 72

// Hasher — односторонняя функция для паролей пользователей.
// Hash каждый раз солит заново. Проверки пароля сервис не делает,
// Verify есть только у конкретных реализаций.
type Hasher interface {
	Hash(password string) (string, error)
}

// NewHasher выбирает реализацию по password.hasher.
func NewHasher(cfg config.PasswordConfig) (Hasher, error) {
	switch strings.ToLower(cfg.Hasher) {
	case "bcrypt", "":
		cost := cfg.Bcrypt.Cost
		if cost == 0 {
			cost = 12
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost вне диапазона: %d", cost)
		}
		return BcryptHasher{Cost: cost}, nil
	case "argon2id":
		a := cfg.Argon2
		return Argon2Hasher{Params: Argon2Params{
			Time:      a.Time,
			MemoryKiB: a.MemoryKiB,
			Threads:   a.Threads,
			KeyLen:    a.KeyLen,
			SaltLen:   a.SaltLen,
		}}, nil
	default:
		return nil, fmt.Errorf("неизвестный hasher %q", cfg.Hasher)
	}
}

// Argon2Hasher — argon2id, формат строки см. HashPassword.
type Argon2Hasher struct {
	Params Argon2Params
}

func (h Argon2Hasher) Hash(password string) (string, error) {
	return HashPassword(password, h.Params)
}

func (h Argon2Hasher) Verify(password, encoded string) (bool, error) {
	return VerifyPassword(password, encoded)
}

// BcryptHasher — bcrypt с заданной стоимостью.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword(truncate(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), truncate(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}
