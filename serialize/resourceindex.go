package serialize

import "fmt"

// resourceEntrySize is the fixed width of one ri/si record: "000\XXXXXXXX".
const resourceEntrySize = 12

// EncodeResourceIndex builds ri or si: an ASCII concatenation of fixed
// 12-byte entries "000\XXXXXXXX" (literal backslash, zero-padded 8-digit
// decimal index), one per asset in positional order (§4.5).
func EncodeResourceIndex(count int) []byte {
	buf := make([]byte, 0, count*resourceEntrySize)
	for i := 0; i < count; i++ {
		entry := fmt.Sprintf("000\\%08d", i)
		buf = append(buf, entry...)
	}
	return buf
}
