package orchestrator

import (
	"github.com/lunii-encode/native-pack-encoder/cipher"
	"github.com/lunii-encode/native-pack-encoder/models"
)

// newCipher builds the Cipher implementation matching opts.Version,
// enforcing that V3 carries the key/iv it requires (§4.7).
func newCipher(opts models.EncodeOptions) (cipher.Cipher, error) {
	switch opts.Version {
	case models.VersionV2:
		return cipher.NewV2Cipher(), nil
	case models.VersionV3:
		if len(opts.AESKey) == 0 || len(opts.AESIV) == 0 {
			return nil, &models.ConfigurationError{Detail: "V3 encoding requires both aes_key and aes_iv"}
		}
		return cipher.NewV3Cipher(opts.AESKey, opts.AESIV), nil
	default:
		return nil, &models.ConfigurationError{Detail: "unsupported version"}
	}
}
