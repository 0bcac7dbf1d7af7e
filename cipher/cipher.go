package cipher

// EncryptionBlockSize is the number of leading bytes of every asset and of
// li/ri/si that get encrypted; the remainder of the file is left in the
// clear (§4.2).
const EncryptionBlockSize = 512

// Cipher abstracts the two supported on-device encryption schemes behind
// the encrypt-first-block contract (§4.2), so serializers and the
// orchestrator never need to know which firmware version they're targeting.
type Cipher interface {
	// EncryptFirstBlock encrypts at most the first EncryptionBlockSize bytes
	// of data; data itself is not modified. If the resulting ciphertext is
	// longer than data (PKCS#7 padding only occurs under V3), the ciphertext
	// alone is returned; otherwise the ciphertext is copied over the start of
	// a copy of data. Under V2 the ciphertext has the block's length and the
	// tail is unchanged; under V3 a padded ciphertext also overwrites the
	// bytes that directly follow the block.
	EncryptFirstBlock(data []byte) ([]byte, error)
}

// encryptFirstBlock implements the splice-or-replace contract shared by
// every Cipher implementation, parameterized on the raw block-encrypt
// function.
func encryptFirstBlock(data []byte, encrypt func([]byte) ([]byte, error)) ([]byte, error) {
	blockLen := EncryptionBlockSize
	if blockLen > len(data) {
		blockLen = len(data)
	}
	encrypted, err := encrypt(data[:blockLen])
	if err != nil {
		return nil, err
	}
	if len(encrypted) > len(data) {
		return encrypted, nil
	}
	out := append([]byte(nil), data...)
	copy(out, encrypted)
	return out, nil
}

// V2Cipher encrypts with XXTEA under the fixed common key.
type V2Cipher struct{}

func NewV2Cipher() *V2Cipher { return &V2Cipher{} }

func (c *V2Cipher) EncryptFirstBlock(data []byte) ([]byte, error) {
	return encryptFirstBlock(data, func(block []byte) ([]byte, error) {
		return XXTEAEncrypt(block, CommonKeyV2), nil
	})
}

// V3Cipher encrypts with AES-CBC under an externally supplied key/IV.
type V3Cipher struct {
	Key []byte
	IV  []byte
}

func NewV3Cipher(key, iv []byte) *V3Cipher { return &V3Cipher{Key: key, IV: iv} }

func (c *V3Cipher) EncryptFirstBlock(data []byte) ([]byte, error) {
	return encryptFirstBlock(data, func(block []byte) ([]byte, error) {
		return AESCBCEncrypt(block, c.Key, c.IV)
	})
}
