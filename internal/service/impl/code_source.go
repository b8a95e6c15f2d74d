package impl

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CryptoCodeSource backs CodeSource with crypto/rand.
type CryptoCodeSource struct{}

func NewCryptoCodeSource() *CryptoCodeSource { return &CryptoCodeSource{} }

func (CryptoCodeSource) Digits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}
	max := big.NewInt(10)
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

func (CryptoCodeSource) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
