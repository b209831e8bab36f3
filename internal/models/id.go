package models

import (
	"crypto/rand"
	"math/big"
)

const (
	idAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	idSuffixLength  = 21
	idPrefixDivider = "_"
)

// NewID 生成带前缀的随机ID，如 cart_V1StGXR8Z5jdHi6BmyT3a
func NewID(prefix string) string {
	buf := make([]byte, idSuffixLength)
	upper := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, upper)
		if err != nil {
			panic(err)
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return prefix + idPrefixDivider + string(buf)
}
