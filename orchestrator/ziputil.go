package orchestrator

import (
	"archive/zip"
	"io"
)

// findZipEntry returns the *zip.File whose name matches exactly, or nil.
func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// readZipEntry reads the full contents of a named entry.
func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	f := findZipEntry(zr, name)
	if f == nil {
		return nil, io.ErrUnexpectedEOF
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
