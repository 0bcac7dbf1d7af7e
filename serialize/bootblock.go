package serialize

import (
	"github.com/lunii-encode/native-pack-encoder/cipher"
	"github.com/lunii-encode/native-pack-encoder/models"
)

// btSize is the fixed length of the boot block in both firmware versions.
const btSize = 64

// EncodeBT computes the boot block (§4.5). encryptedRI must be the
// already-encrypted ri file contents (i.e. after encrypt_first_block has
// been applied). For V2, bt is the first 64 bytes of encryptedRI encrypted
// again under the device-specific key derived from packUUID; an ri shorter
// than 64 bytes is zero-padded to 64 first. For V3, bt is 64 zero bytes: the
// device itself writes the real boot block during install.
func EncodeBT(version models.Version, encryptedRI []byte, packUUID [16]byte) ([]byte, error) {
	switch version {
	case models.VersionV2:
		head := make([]byte, btSize)
		copy(head, encryptedRI)
		key := cipher.V2SpecificKey(packUUID)
		return cipher.XXTEAEncrypt(head, key), nil
	case models.VersionV3:
		return make([]byte, btSize), nil
	default:
		return nil, &models.ConfigurationError{Detail: "unknown version for boot block"}
	}
}
