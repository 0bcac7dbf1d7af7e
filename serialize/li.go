package serialize

import (
	"encoding/binary"

	"github.com/lunii-encode/native-pack-encoder/graph"
)

// EncodeLI serializes the list index: for every ListNodeIndex entry in
// declaration order, one little-endian u32 per option equal to the
// referenced StageNode's position in declaration order. An option uuid
// that does not resolve (should not arise after validation) writes 0
// (§4.5).
func EncodeLI(entries []graph.ListNodeEntry, stagePosition map[string]int) []byte {
	total := 0
	for _, e := range entries {
		total += len(e.Options)
	}

	buf := make([]byte, 4*total)
	offset := 0
	for _, e := range entries {
		for _, uuid := range e.Options {
			pos := stagePosition[uuid] // zero value if unresolved
			binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(pos))
			offset += 4
		}
	}
	return buf
}
