package orchestrator

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lunii-encode/native-pack-encoder/audiocodec"
	"github.com/lunii-encode/native-pack-encoder/cipher"
	"github.com/lunii-encode/native-pack-encoder/graph"
	"github.com/lunii-encode/native-pack-encoder/models"
)

// writeAudio implements step 8 of §4.6: for each audio asset, transcode
// (using the caching transcoder), encrypt the first block, and write to
// sf/000/<position>. A StageNode with no audio resolves to the blank-MP3
// sentinel directly, skipping the transcoder entirely. Per §4.7, only a
// transcode failure on a single asset substitutes the sentinel and
// continues; every other failure (a missing asset, a missing transcoder
// binary, an I/O error) aborts the whole encode.
func writeAudio(zr *zip.Reader, audio []graph.AudioAsset, contentDir, scratchRoot string, c cipher.Cipher, transcoder *audiocodec.CachingTranscoder) error {
	for _, asset := range audio {
		mp3, err := resolveAudioBytes(zr, asset, scratchRoot, transcoder)
		if err != nil {
			var transcodeErr *models.TranscodeError
			if !errors.As(err, &transcodeErr) {
				return err
			}
			log.Printf("[WARN] audio transcode failed for %q, substituting blank MP3: %v", asset.Name, err)
			mp3 = audiocodec.BlankMP3
		}

		encrypted, err := c.EncryptFirstBlock(mp3)
		if err != nil {
			return &models.IOError{Op: fmt.Sprintf("encrypt audio %q", asset.Name), Err: err}
		}

		outPath := filepath.Join(contentDir, "sf", "000", fmt.Sprintf("%08d", asset.Position))
		if err := os.WriteFile(outPath, encrypted, 0o644); err != nil {
			return &models.IOError{Op: fmt.Sprintf("write audio asset %q", asset.Name), Err: err}
		}
	}
	return nil
}

func resolveAudioBytes(zr *zip.Reader, asset graph.AudioAsset, scratchRoot string, transcoder *audiocodec.CachingTranscoder) ([]byte, error) {
	if asset.Name == graph.BlankAudioSentinel {
		return audiocodec.BlankMP3, nil
	}

	entryName, ok := graph.ResolveAsset(asset.Name, func(name string) bool { return findZipEntry(zr, name) != nil })
	if !ok {
		return nil, &models.MissingAssetError{Names: []string{asset.Name}, Total: 1}
	}
	raw, err := readZipEntry(zr, entryName)
	if err != nil {
		return nil, &models.IOError{Op: fmt.Sprintf("read audio asset %q", asset.Name), Err: err}
	}

	srcPath := filepath.Join(scratchRoot, "src_"+sanitizeName(asset.Name))
	if err := os.WriteFile(srcPath, raw, 0o644); err != nil {
		return nil, &models.IOError{Op: fmt.Sprintf("stage audio asset %q", asset.Name), Err: err}
	}

	return transcoder.TranscodeBytes(context.Background(), asset.Name, srcPath, scratchRoot)
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
