// Package audiocodec re-encodes arbitrary source audio into the native
// pack's mono 44.1 kHz 64 kbps MP3 layout (§4.4), delegating the actual
// codec work to an external command-line transcoder the way the teacher's
// audio_service.go shells out to ffmpeg for WAV->MP3 conversion.
package audiocodec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/lunii-encode/native-pack-encoder/models"
)

// transcodeTimeout bounds a single external transcoder invocation (§5).
const transcodeTimeout = 120 * time.Second

// Transcoder converts a source audio file on disk into a stripped mono
// 44.1kHz/64kbps MP3 file on disk, per the §6.2 command-line contract.
type Transcoder interface {
	Transcode(ctx context.Context, inPath, outPath string) error
}

// ffmpegTranscoder shells out to an ffmpeg-compatible binary. It never
// assumes a specific brand; any binary accepting the §6.2 flag shape works.
type ffmpegTranscoder struct {
	bin string
}

// NewFFmpegTranscoder returns a Transcoder invoking bin with the §6.2
// argument shape. bin is typically "ffmpeg" or an absolute path from
// configuration.
func NewFFmpegTranscoder(bin string) Transcoder {
	return &ffmpegTranscoder{bin: bin}
}

func (t *ffmpegTranscoder) Transcode(ctx context.Context, inPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.bin,
		"-y",
		"-i", inPath,
		"-ar", "44100",
		"-ac", "1",
		"-b:a", "64k",
		"-map_metadata", "-1",
		"-id3v2_version", "0",
		"-write_id3v1", "0",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, lookErr := exec.LookPath(t.bin); lookErr != nil {
			return &models.EnvironmentError{Detail: fmt.Sprintf("transcoder %q not found on PATH", t.bin)}
		}
		return &models.TranscodeError{Asset: inPath, Err: fmt.Errorf("%w, stderr: %s", err, stderr.String())}
	}
	return nil
}

// CachingTranscoder wraps a Transcoder with a by-source-name byte cache so
// the same asset referenced from multiple stages is transcoded once per
// encode (§4.4, §5). Safe for concurrent use; the cache is guarded by a
// mutex as required when steps 7-9 run in parallel.
type CachingTranscoder struct {
	inner Transcoder

	mu    sync.Mutex
	cache map[string][]byte
}

func NewCachingTranscoder(inner Transcoder) *CachingTranscoder {
	return &CachingTranscoder{inner: inner, cache: make(map[string][]byte)}
}

// TranscodeBytes transcodes audio read from srcPath, keyed by name in the
// cache. If name was already transcoded during this encode, the cached
// bytes are returned without invoking the external process again.
func (c *CachingTranscoder) TranscodeBytes(ctx context.Context, name, srcPath, scratchDir string) ([]byte, error) {
	c.mu.Lock()
	if cached, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	outPath := scratchDir + "/" + sanitizeTempName(name) + ".mp3"
	if err := c.inner.Transcode(ctx, srcPath, outPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &models.IOError{Op: "read transcoded audio", Err: err}
	}

	c.mu.Lock()
	c.cache[name] = data
	c.mu.Unlock()
	return data, nil
}

// sanitizeTempName strips path separators from an asset name so it can be
// used as a scratch-directory file name.
func sanitizeTempName(name string) string {
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
