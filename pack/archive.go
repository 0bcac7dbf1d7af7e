package pack

import (
	"archive/zip"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lunii-encode/native-pack-encoder/models"
)

// WriteArchive walks contentDir and writes every file beneath it into a new
// DEFLATE ZIP at outPath. Entry names are relative to contentDir's parent,
// so they start with contentDir's own name (".content/<REF>/..."), and use
// forward slashes so the archive matches the §6.3 layout regardless of host
// OS (§4.6 step 10). On failure the partial ZIP at outPath is removed.
func WriteArchive(contentDir, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return &models.IOError{Op: "create output zip", Err: err}
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(filepath.Dir(contentDir), path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   rel,
			Method: zip.Deflate,
		})
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		os.Remove(outPath)
		return &models.IOError{Op: "write output zip entries", Err: err}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(outPath)
		return &models.IOError{Op: "finalize output zip", Err: err}
	}
	return nil
}
