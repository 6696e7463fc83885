package registry

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// uniqueCode retries until the code misses the live index. Collisions on a
// 36^6 space are rare enough that a small retry cap only guards against a
// broken random source.
func (r *Registry) uniqueCode() (string, error) {
	for attempt := 0; attempt < 32; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := r.codes[code]; !taken {
			return code, nil
		}
	}
	return "", errors.New("could not find a free join code")
}
