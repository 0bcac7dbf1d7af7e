// Package imagecodec converts arbitrary source images into the native
// pack's 4-bit grayscale RLE BMP layout (§4.3). Grounded on the reference
// lunii_converter.py's convert_image_to_lunii_bmp, reworked around Go's
// image package plus disintegration/imaging for the Lanczos fit-and-pad
// step the standard library has no equivalent for.
package imagecodec

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Target dimensions for every native-pack image (§4.3).
const (
	Width  = 320
	Height = 240
)

const (
	fileHeaderSize = 14
	dibHeaderSize  = 40
	paletteSize    = 16 * 4
	pixelOffset    = fileHeaderSize + dibHeaderSize + paletteSize // 118
)

// EncodeBMP fits src (preserving aspect ratio, centered and padded on a
// black canvas) to exactly Width x Height using Lanczos resampling,
// quantizes to 16 grayscale levels and RLE4-encodes it into a complete BMP
// file, bottom row first.
func EncodeBMP(src image.Image) []byte {
	fitted := imaging.Fit(src, Width, Height, imaging.Lanczos)
	canvas := imaging.New(Width, Height, color.Black)
	canvas = imaging.PasteCenter(canvas, fitted)

	gray := toGray(canvas)
	flipVertical(gray)
	pixelStream := encodeRLE4(gray)
	return assembleBMP(pixelStream)
}

// toGray converts img to 8-bit grayscale using the standard luma transform
// (image/color.GrayModel), matching a general-purpose "convert to L" step.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return out
}

// flipVertical reverses img's rows in place; BMP pixel data is stored
// bottom row first.
func flipVertical(img *image.Gray) {
	h := img.Rect.Dy()
	w := img.Rect.Dx()
	stride := img.Stride
	tmp := make([]byte, w)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*stride : y*stride+w]
		bottom := img.Pix[(h-1-y)*stride : (h-1-y)*stride+w]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

// encodeRLE4 walks gray's rows (already bottom-row-first after flipVertical)
// and emits BI_RLE4 runs per §4.3: each pixel quantized to 4 bits via
// byte>>4, runs capped at 255, end-of-line markers between rows, and a
// single end-of-bitmap marker after the last row.
func encodeRLE4(gray *image.Gray) []byte {
	h := gray.Rect.Dy()
	w := gray.Rect.Dx()
	stride := gray.Stride

	var out []byte
	for y := 0; y < h; y++ {
		row := gray.Pix[y*stride : y*stride+w]
		runLen := byte(0)
		runColor := byte(0)
		for x := 0; x < w; x++ {
			q := row[x] >> 4
			if x == 0 {
				runLen = 1
				runColor = q
				continue
			}
			if q == runColor && runLen < 255 {
				runLen++
				continue
			}
			out = append(out, runLen, (runColor<<4)|runColor)
			runLen = 1
			runColor = q
		}
		out = append(out, runLen, (runColor<<4)|runColor)
		if y < h-1 {
			out = append(out, 0x00, 0x00) // end of line
		}
	}
	out = append(out, 0x00, 0x01) // end of bitmap
	return out
}

// assembleBMP writes the 14-byte file header, 40-byte DIB header and
// 64-byte 16-entry grayscale palette ahead of pixelStream, per §4.3's exact
// byte layout.
func assembleBMP(pixelStream []byte) []byte {
	fileSize := pixelOffset + len(pixelStream)
	buf := make([]byte, fileSize)

	// File header (14 bytes)
	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[2:6], uint32(fileSize))
	// buf[6:10] reserved = 0
	binary.LittleEndian.PutUint32(buf[10:14], uint32(pixelOffset))

	// DIB header (40 bytes)
	binary.LittleEndian.PutUint32(buf[14:18], dibHeaderSize)
	binary.LittleEndian.PutUint32(buf[18:22], uint32(Width))
	binary.LittleEndian.PutUint32(buf[22:26], uint32(Height))
	binary.LittleEndian.PutUint16(buf[26:28], 1) // planes
	binary.LittleEndian.PutUint16(buf[28:30], 4) // bpp
	binary.LittleEndian.PutUint32(buf[30:34], 2) // BI_RLE4
	binary.LittleEndian.PutUint32(buf[34:38], uint32(len(pixelStream)))
	// buf[38:54] resolution + palette colors + important colors = 0

	// Palette: 16 grayscale entries (blue, green, red, 0)
	paletteStart := fileHeaderSize + dibHeaderSize
	for i := 0; i < 16; i++ {
		gray := byte((255 * i) / 16)
		off := paletteStart + i*4
		buf[off] = gray
		buf[off+1] = gray
		buf[off+2] = gray
		buf[off+3] = 0
	}

	copy(buf[pixelOffset:], pixelStream)
	return buf
}
