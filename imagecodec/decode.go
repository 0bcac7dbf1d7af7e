package imagecodec

import (
	"image"
	"image/color"
)

// DecodeRLE4 reconstructs the grayscale pixel grid encoded by encodeRLE4,
// undoing the run-length stream (bottom row first as emitted) and restoring
// full 8-bit values via the same (color<<4)|color un-quantization the
// firmware itself performs on playback. It exists to support the round-trip
// property test described in §8 and is not used by the encode path.
func DecodeRLE4(pixelStream []byte, width, height int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, width, height))
	row, col := 0, 0
	i := 0
	for i < len(pixelStream) && row < height {
		runLen := pixelStream[i]
		colorByte := pixelStream[i+1]
		i += 2
		if runLen == 0 {
			if colorByte == 0x00 { // end of line
				row++
				col = 0
				continue
			}
			if colorByte == 0x01 { // end of bitmap
				break
			}
		}
		value := colorByte // already (c<<4)|c, directly usable as 8-bit gray
		for n := byte(0); n < runLen && col < width; n++ {
			out.SetGray(col, row, color.Gray{Y: value})
			col++
		}
	}
	return out
}
