package impl

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// CodeHasherArgon2id is the salted one-way hash for stored OTP codes.
// Codes are short-lived and low-entropy, so the cost parameters stay well
// below password-grade while keeping brute force over the store useless
// within a code's TTL.
type CodeHasherArgon2id struct {
	params Argon2Params
}

func NewCodeHasherArgon2id() *CodeHasherArgon2id {
	return &CodeHasherArgon2id{
		params: Argon2Params{
			Time:    1,
			Memory:  16 * 1024, // 16 MiB
			Threads: 1,
			KeyLen:  32,
			SaltLen: 16,
		},
	}
}

func (h *CodeHasherArgon2id) Hash(code string) (hash, salt []byte, err error) {
	if code == "" {
		return nil, nil, ErrEmptyCode
	}
	salt = make([]byte, h.params.SaltLen)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	hash = argon2.IDKey([]byte(code), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return hash, salt, nil
}

func (h *CodeHasherArgon2id) Compare(code string, hash, salt []byte) bool {
	if code == "" || len(hash) == 0 || len(salt) == 0 {
		return false
	}
	calculated := argon2.IDKey([]byte(code), salt, h.params.Time, h.params.Memory, h.params.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(calculated, hash) == 1
}
