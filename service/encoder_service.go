// Package service wraps the orchestrator behind an interface the HTTP
// handlers depend on, following the teacher's NewXxxService() constructor
// injection pattern and [INFO]/[DEBUG]/[WARN]/[ERROR] logging convention.
package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lunii-encode/native-pack-encoder/audiocodec"
	"github.com/lunii-encode/native-pack-encoder/models"
	"github.com/lunii-encode/native-pack-encoder/orchestrator"
)

// EncoderService exposes the encode pipeline to transport adapters (HTTP,
// CLI) without exposing orchestrator internals.
type EncoderService interface {
	Encode(inputZipPath string, opts models.EncodeOptions) (*models.EncodeResult, error)
}

type encoderService struct {
	encoder *orchestrator.Encoder
}

// NewEncoderService builds an EncoderService backed by an ffmpeg-compatible
// transcoder resolved from ffmpegBin (typically configuration's FFMPEG_BIN,
// defaulting to "ffmpeg").
func NewEncoderService(ffmpegBin string) EncoderService {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	transcoder := audiocodec.NewFFmpegTranscoder(ffmpegBin)
	return &encoderService{encoder: orchestrator.NewEncoder(transcoder)}
}

func (s *encoderService) Encode(inputZipPath string, opts models.EncodeOptions) (*models.EncodeResult, error) {
	log.Printf("[INFO] EncoderService.Encode: starting encode of %q (version=%s)", filepath.Base(inputZipPath), opts.Version)

	result, err := s.encoder.Encode(inputZipPath, withLoggingProgress(opts))
	if err != nil {
		log.Printf("[ERROR] EncoderService.Encode: %v", err)
		return nil, err
	}

	log.Printf("[INFO] EncoderService.Encode: finished, ref=%s output=%s", result.Ref, result.OutputPath)
	return result, nil
}

// withLoggingProgress wraps the caller's ProgressFunc (if any) so every
// boundary is also logged at debug level, matching the teacher's habit of
// logging both to the caller and to its own diagnostic stream.
func withLoggingProgress(opts models.EncodeOptions) models.EncodeOptions {
	callerProgress := opts.Progress
	opts.Progress = func(fraction float64, message string) {
		log.Printf("[DEBUG] EncoderService.Encode: progress %.2f - %s", fraction, message)
		if callerProgress != nil {
			callerProgress(fraction, message)
		}
	}
	return opts
}

// SaveUpload writes data to a fresh file under dir, returning its path.
// Used by the HTTP handler to stage an uploaded multipart ZIP before
// handing it to Encode, which operates on paths rather than byte slices.
func SaveUpload(dir, filename string, data []byte) (string, error) {
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &models.IOError{Op: fmt.Sprintf("stage upload %q", filename), Err: err}
	}
	return path, nil
}
