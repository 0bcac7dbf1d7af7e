package audiocodec

// BlankMP3 is the canonical 108-byte silent placeholder (§6.3) substituted
// whenever a StageNode declares no audio. It is an MP3 frame with a Xing
// header at offset 36, padded with zeros to 108 bytes.
var BlankMP3 = buildBlankMP3()

func buildBlankMP3() []byte {
	buf := make([]byte, 108)

	copy(buf[0:16], []byte{
		0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	})

	copy(buf[36:40], []byte("Xing"))
	copy(buf[40:44], []byte{0x00, 0x00, 0x00, 0x0F}) // flags
	copy(buf[44:48], []byte{0x00, 0x00, 0x00, 0x01}) // frames
	copy(buf[48:52], []byte{0x00, 0x00, 0x00, 0x68}) // bytes

	toc := []byte{
		0x00, 0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x70,
		0x80, 0x90, 0xA0, 0xB0, 0xC0, 0xD0, 0xE0, 0xFF,
	}
	copy(buf[52:52+len(toc)], toc)

	return buf
}
