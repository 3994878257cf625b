package codegen

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// Alphabet содержит 62 символа: A-Z, a-z, 0-9
	Alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultLength = 6
)

var ErrInvalidConfig = errors.New("codegen: alphabet and length must be non-empty")

// Generator выдаёт кандидатов в короткие коды. Уникальность не гарантируется,
// за неё отвечает хранилище.
type Generator interface {
	Generate() (string, error)
}

type randomGenerator struct {
	alphabet string
	length   int
	max      *big.Int
}

// NewRandom создаёт генератор, выбирающий каждый символ равновероятно из alphabet
func NewRandom(alphabet string, length int) (Generator, error) {
	if alphabet == "" || length <= 0 {
		return nil, ErrInvalidConfig
	}
	return &randomGenerator{
		alphabet: alphabet,
		length:   length,
		max:      big.NewInt(int64(len(alphabet))),
	}, nil
}

// NewDefault возвращает генератор кодов длины 6 по алфавиту из 62 символов
func NewDefault() Generator {
	g, _ := NewRandom(Alphabet, DefaultLength)
	return g
}

func (g *randomGenerator) Generate() (string, error) {
	result := make([]byte, g.length)
	for i := range result {
		num, err := rand.Int(rand.Reader, g.max)
		if err != nil {
			return "", err
		}
		result[i] = g.alphabet[num.Int64()]
	}
	return string(result), nil
}
