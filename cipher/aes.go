package cipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// AESCBCEncrypt encrypts data with AES-128/192/256 in CBC mode, PKCS#7
// padded, using the externally-supplied key and iv (§4.2, V3).
func AESCBCEncrypt(data, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("aes: iv must be %d bytes, got %d", block.BlockSize(), len(iv))
	}

	padded := pkcs7Pad(data, block.BlockSize())
	out := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte(nil), data...), padding...)
}

// RandomIV returns a cryptographically random IV of the AES block size
// (always 16 bytes, whatever the key length).
func RandomIV() ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("aes: generating iv: %w", err)
	}
	return iv, nil
}
