package imagecodec

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEncodeBMPHeaderLayout(t *testing.T) {
	src := solidImage(100, 100, color.Black)
	bmp := EncodeBMP(src)

	if string(bmp[0:2]) != "BM" {
		t.Fatalf("bad signature %q", bmp[0:2])
	}
	fileSize := binary.LittleEndian.Uint32(bmp[2:6])
	if int(fileSize) != len(bmp) {
		t.Errorf("file size field = %d, want %d", fileSize, len(bmp))
	}
	if int(fileSize) != pixelOffset+(len(bmp)-pixelOffset) {
		t.Errorf("file_size invariant broken")
	}
	pixOff := binary.LittleEndian.Uint32(bmp[10:14])
	if pixOff != 118 {
		t.Errorf("pixel data offset = %d, want 118", pixOff)
	}
	dibSize := binary.LittleEndian.Uint32(bmp[14:18])
	if dibSize != 40 {
		t.Errorf("dib header size = %d, want 40", dibSize)
	}
	width := int32(binary.LittleEndian.Uint32(bmp[18:22]))
	height := int32(binary.LittleEndian.Uint32(bmp[22:26]))
	if width != Width || height != Height {
		t.Errorf("dimensions = %dx%d, want %dx%d", width, height, Width, Height)
	}
	planes := binary.LittleEndian.Uint16(bmp[26:28])
	bpp := binary.LittleEndian.Uint16(bmp[28:30])
	if planes != 1 || bpp != 4 {
		t.Errorf("planes=%d bpp=%d, want 1/4", planes, bpp)
	}
	compression := binary.LittleEndian.Uint32(bmp[30:34])
	if compression != 2 {
		t.Errorf("compression = %d, want 2 (BI_RLE4)", compression)
	}
	dataSize := binary.LittleEndian.Uint32(bmp[34:38])
	if int(dataSize) != len(bmp)-pixelOffset {
		t.Errorf("image data size = %d, want %d", dataSize, len(bmp)-pixelOffset)
	}
}

func TestEncodeBMPPalette(t *testing.T) {
	src := solidImage(320, 240, color.White)
	bmp := EncodeBMP(src)
	paletteStart := 54
	for i := 0; i < 16; i++ {
		want := byte((255 * i) / 16)
		off := paletteStart + i*4
		if bmp[off] != want || bmp[off+1] != want || bmp[off+2] != want || bmp[off+3] != 0 {
			t.Fatalf("palette entry %d = %v, want (%d,%d,%d,0)", i, bmp[off:off+4], want, want, want)
		}
	}
}

func TestEncodeBMPFileSizeInvariant(t *testing.T) {
	src := solidImage(50, 200, color.Gray{Y: 128})
	bmp := EncodeBMP(src)
	fileSize := binary.LittleEndian.Uint32(bmp[2:6])
	pixelStreamLen := len(bmp) - 118
	if int(fileSize) != 118+pixelStreamLen {
		t.Errorf("file_size = %d, want 118+%d = %d", fileSize, pixelStreamLen, 118+pixelStreamLen)
	}
}

func TestEncodeRLE4SolidRowIsSingleRun(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 1))
	for x := 0; x < 10; x++ {
		gray.SetGray(x, 0, color.Gray{Y: 0x80})
	}
	stream := encodeRLE4(gray)
	// One row, solid color: run(10), color byte, then end-of-bitmap.
	if len(stream) != 4 {
		t.Fatalf("expected 4-byte stream for single solid row, got %d: %x", len(stream), stream)
	}
	if stream[0] != 10 {
		t.Errorf("run length = %d, want 10", stream[0])
	}
	q := byte(0x80) >> 4
	if stream[1] != (q<<4)|q {
		t.Errorf("color byte = %#x, want %#x", stream[1], (q<<4)|q)
	}
	if stream[2] != 0x00 || stream[3] != 0x01 {
		t.Errorf("expected end-of-bitmap marker, got %x", stream[2:4])
	}
}

func TestEncodeRLE4RunCapsAt255(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 300, 1))
	for x := 0; x < 300; x++ {
		gray.SetGray(x, 0, color.Gray{Y: 0x40})
	}
	stream := encodeRLE4(gray)
	if stream[0] != 255 {
		t.Fatalf("first run length = %d, want 255 (capped)", stream[0])
	}
	if stream[2] != 45 {
		t.Fatalf("second run length = %d, want 45 (300-255)", stream[2])
	}
}

func TestRoundTripWithinOneQuantizationStep(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	bmp := EncodeBMP(src)
	pixelStream := bmp[pixelOffset:]
	decoded := DecodeRLE4(pixelStream, Width, Height)

	// Re-flip decoded (bottom-row-first) back to top-down and compare to the
	// source within one 16-level step (i.e. 16 gray values).
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			got := decoded.GrayAt(x, Height-1-y).Y
			want := src.GrayAt(x, y).Y
			diff := int(got) - int(want)
			if diff < 0 {
				diff = -diff
			}
			if diff > 16 {
				t.Fatalf("pixel (%d,%d) off by %d (got %d want %d)", x, y, diff, got, want)
			}
		}
	}
}
