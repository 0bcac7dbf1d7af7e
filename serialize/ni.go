// Package serialize emits the native pack's fixed-layout binary index files
// (ni, li, ri/si, bt, md) byte-exactly per §4.5, little-endian throughout.
// Grounded on the reference lunii_converter.py's struct.pack-based node
// writer, reworked around encoding/binary.
package serialize

import (
	"encoding/binary"

	"github.com/lunii-encode/native-pack-encoder/graph"
)

const (
	niHeaderSize    = 512
	niNodeSize      = 44
	niFormatVersion = 1
	niFactoryFlag   = 1
)

// TransitionIndex resolves an ActionNode id to the fields an NI transition
// record needs: its ListNodeIndex absolute position in li, and its option
// count. The orchestrator builds this from the ListNodeIndex derived view.
type TransitionIndex struct {
	AbsolutePosition map[string]int
	OptionCount      map[string]int
}

// EncodeNI serializes the node index: a 512-byte header followed by one
// 44-byte record per StageNode in declaration order (§4.5). imagePosition
// maps a StageNode uuid to its position in the image asset list; stages
// without an image are absent from the map. storyVersion is the story pack
// version carried from the input (default 1).
func EncodeNI(stages []graph.StageNode, storyVersion int16, imagePosition map[string]int, tx TransitionIndex, imageCount, audioCount int) []byte {
	buf := make([]byte, niHeaderSize+niNodeSize*len(stages))

	binary.LittleEndian.PutUint16(buf[0:2], niFormatVersion)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(storyVersion))
	binary.LittleEndian.PutUint32(buf[4:8], niHeaderSize)
	binary.LittleEndian.PutUint32(buf[8:12], niNodeSize)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(stages)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(imageCount))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(audioCount))
	buf[24] = niFactoryFlag
	// buf[25:512] stays zero.

	for i, stage := range stages {
		rec := buf[niHeaderSize+i*niNodeSize : niHeaderSize+(i+1)*niNodeSize]

		imgPos := int32(-1)
		if pos, ok := imagePosition[stage.UUID]; ok {
			imgPos = int32(pos)
		}
		putI32(rec[0:4], imgPos)
		putI32(rec[4:8], int32(i)) // audio list is 1:1 with stages

		writeTransition(rec[8:20], stage.OKTransition, tx)
		writeTransition(rec[20:32], stage.HomeTransition, tx)

		putFlag(rec[32:34], stage.Controls.Wheel)
		putFlag(rec[34:36], stage.Controls.OK)
		putFlag(rec[36:38], stage.Controls.Home)
		putFlag(rec[38:40], stage.Controls.Pause)
		putFlag(rec[40:42], stage.Controls.Autoplay)
		// rec[42:44] padding stays zero.
	}

	return buf
}

func writeTransition(dst []byte, t *graph.Transition, tx TransitionIndex) {
	if t == nil {
		putI32(dst[0:4], -1)
		putI32(dst[4:8], -1)
		putI32(dst[8:12], -1)
		return
	}
	absPos, okA := tx.AbsolutePosition[t.ActionRef]
	count, okC := tx.OptionCount[t.ActionRef]
	if !okA || !okC {
		// Validation guarantees every action_ref resolves; this branch is
		// unreachable for a validated graph.
		putI32(dst[0:4], -1)
		putI32(dst[4:8], -1)
		putI32(dst[8:12], -1)
		return
	}
	putI32(dst[0:4], int32(absPos))
	putI32(dst[4:8], int32(count))
	putI32(dst[8:12], int32(t.OptionIndex))
}

func putI32(dst []byte, v int32) {
	binary.LittleEndian.PutUint32(dst, uint32(v))
}

func putFlag(dst []byte, v bool) {
	var u uint16
	if v {
		u = 1
	}
	binary.LittleEndian.PutUint16(dst, u)
}
