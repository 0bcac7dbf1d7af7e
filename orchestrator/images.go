package orchestrator

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/lunii-encode/native-pack-encoder/cipher"
	"github.com/lunii-encode/native-pack-encoder/graph"
	"github.com/lunii-encode/native-pack-encoder/imagecodec"
	"github.com/lunii-encode/native-pack-encoder/models"
)

// writeImages implements step 7 of §4.6: for each image asset, decode,
// encode BMP, encrypt the first block, and write to rf/000/<position>.
func writeImages(zr *zip.Reader, images []graph.ImageAsset, contentDir string, c cipher.Cipher) error {
	for _, asset := range images {
		entryName, ok := graph.ResolveAsset(asset.Name, func(name string) bool { return findZipEntry(zr, name) != nil })
		if !ok {
			return &models.MissingAssetError{Names: []string{asset.Name}, Total: 1}
		}
		raw, err := readZipEntry(zr, entryName)
		if err != nil {
			return &models.IOError{Op: fmt.Sprintf("read image asset %q", asset.Name), Err: err}
		}

		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return &models.InvalidInputError{Reason: fmt.Sprintf("image %q could not be decoded: %v", asset.Name, err)}
		}

		bmp := imagecodec.EncodeBMP(img)
		encrypted, err := c.EncryptFirstBlock(bmp)
		if err != nil {
			return &models.IOError{Op: fmt.Sprintf("encrypt image %q", asset.Name), Err: err}
		}

		outPath := filepath.Join(contentDir, "rf", "000", fmt.Sprintf("%08d", asset.Position))
		if err := os.WriteFile(outPath, encrypted, 0o644); err != nil {
			return &models.IOError{Op: fmt.Sprintf("write image asset %q", asset.Name), Err: err}
		}
	}
	return nil
}
