package cipher

import (
	"bytes"
	"testing"
)

func TestXXTEARoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
		bytes.Repeat([]byte{0xAB}, 512),
		[]byte("the quick brown fox jumps over the lazy dog!!!!"),
	}
	for _, data := range cases {
		enc := XXTEAEncrypt(data, CommonKeyV2)
		dec := XXTEADecrypt(enc, CommonKeyV2)
		if !bytes.Equal(dec, data) {
			t.Fatalf("round trip mismatch for %d-byte input", len(data))
		}
	}
}

func TestXXTEAShortBufferPassesThrough(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 5, 7} {
		data := bytes.Repeat([]byte{0x42}, n)
		enc := XXTEAEncrypt(data, CommonKeyV2)
		if n < 8 {
			if !bytes.Equal(enc, data) {
				t.Errorf("buffer of %d bytes (< 2 words) should pass through unchanged", n)
			}
		}
	}
}

func TestXXTEAKeyAndDataPackingDiffer(t *testing.T) {
	// The key is packed with the reversed/big-endian-like convention while
	// data uses natural little-endian packing (§4.2, §9). Packing the common
	// key with each routine must give different words - this guards against
	// an implementer collapsing the two routines into one. Encrypting under
	// the key bytes reversed must also give a different ciphertext.
	keyWords := bytesToWordsKey(CommonKeyV2[:])
	dataWords := bytesToWordsLE(CommonKeyV2[:])
	samePacking := len(keyWords) == len(dataWords)
	for i := 0; samePacking && i < len(keyWords); i++ {
		samePacking = keyWords[i] == dataWords[i]
	}
	if samePacking {
		t.Fatalf("key packing %x must differ from data packing %x", keyWords, dataWords)
	}

	var reversedKey [16]byte
	for i := range CommonKeyV2 {
		reversedKey[i] = CommonKeyV2[15-i]
	}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a := XXTEAEncrypt(data, CommonKeyV2)
	b := XXTEAEncrypt(data, reversedKey)
	if bytes.Equal(a, b) {
		t.Fatal("expected different ciphertexts for distinct keys")
	}
}

func TestEncryptFirstBlockLeavesTailUnchanged(t *testing.T) {
	data := bytes.Repeat([]byte{0x11}, 1024)
	c := NewV2Cipher()
	out, err := c.EncryptFirstBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(data) {
		t.Fatalf("expected same length output for V2 (no padding growth), got %d want %d", len(out), len(data))
	}
	if !bytes.Equal(out[EncryptionBlockSize:], data[EncryptionBlockSize:]) {
		t.Fatal("tail beyond first block must be unchanged")
	}
	if bytes.Equal(out[:EncryptionBlockSize], data[:EncryptionBlockSize]) {
		t.Fatal("first block should have been encrypted")
	}
}

func TestEncryptFirstBlockShortInput(t *testing.T) {
	data := []byte("short")
	c := NewV2Cipher()
	out, err := c.EncryptFirstBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	// Fewer than 2 words: XXTEA passes through unchanged.
	if !bytes.Equal(out, data) {
		t.Fatalf("expected pass-through for sub-word input, got %x want %x", out, data)
	}
}

func TestV3EncryptFirstBlockGrowsOnPadding(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 16)
	iv := bytes.Repeat([]byte{0x02}, 16)
	c := NewV3Cipher(key, iv)

	data := bytes.Repeat([]byte{0x55}, 10) // shorter than one AES block
	out, err := c.EncryptFirstBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 16 {
		t.Fatalf("expected padded block length 16, got %d", len(out))
	}
}

func TestV2SpecificKeyPermutation(t *testing.T) {
	var packUUID [16]byte
	for i := range packUUID {
		packUUID[i] = byte(i)
	}
	key := V2SpecificKey(packUUID)
	decrypted := XXTEADecrypt(packUUID[:], CommonKeyV2)
	want := [16]byte{}
	for i, srcIdx := range specificKeyPermutation {
		want[i] = decrypted[srcIdx]
	}
	if key != want {
		t.Fatalf("permutation mismatch: got %x want %x", key, want)
	}
}
