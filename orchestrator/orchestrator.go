// Package orchestrator drives the full Studio Pack -> native pack pipeline
// (§4.6): validate, load, index, encode images and audio, serialize the
// binary indices, and zip the result. Grounded on the reference
// lunii_converter.py's top-level convert() function, reworked into a Go
// Encoder type the way the teacher wires its service layer around a single
// entry point per request.
package orchestrator

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lunii-encode/native-pack-encoder/audiocodec"
	"github.com/lunii-encode/native-pack-encoder/cipher"
	"github.com/lunii-encode/native-pack-encoder/graph"
	"github.com/lunii-encode/native-pack-encoder/models"
	"github.com/lunii-encode/native-pack-encoder/pack"
	"github.com/lunii-encode/native-pack-encoder/serialize"
)

// Encoder drives a single encode call. Transcoder is injected so tests can
// substitute a fake in place of a real ffmpeg binary.
type Encoder struct {
	Transcoder audiocodec.Transcoder
}

// NewEncoder returns an Encoder backed by the given Transcoder.
func NewEncoder(transcoder audiocodec.Transcoder) *Encoder {
	return &Encoder{Transcoder: transcoder}
}

// noopProgress is used whenever the caller supplies no ProgressFunc.
func noopProgress(float64, string) {}

// Encode implements the §6.4 entry point: encode(input_path, output_path?,
// version, aes_key?, aes_iv?, progress_cb?) -> output_path | error.
func (e *Encoder) Encode(inputZipPath string, opts models.EncodeOptions) (*models.EncodeResult, error) {
	if !opts.Version.IsValid() {
		return nil, &models.ConfigurationError{Detail: fmt.Sprintf("unsupported version %q", opts.Version)}
	}
	cipherImpl, err := newCipher(opts)
	if err != nil {
		return nil, err
	}

	progress := opts.Progress
	if progress == nil {
		progress = noopProgress
	}
	progress(0.00, "starting")

	zrc, err := zip.OpenReader(inputZipPath)
	if err != nil {
		return nil, &models.InvalidInputError{Reason: fmt.Sprintf("open input zip: %v", err)}
	}
	defer zrc.Close()
	zr := &zrc.Reader

	if existingRef, ok := pack.DetectExisting(zr); ok {
		return &models.EncodeResult{OutputPath: inputZipPath, Ref: existingRef}, nil
	}

	progress(0.05, "validating")
	storyData, err := readZipEntry(zr, "story.json")
	if err != nil {
		return nil, &models.InvalidInputError{Reason: "story.json not found at input zip root"}
	}
	g, err := graph.Parse(storyData)
	if err != nil {
		return nil, err
	}
	exists := func(name string) bool { return findZipEntry(zr, name) != nil }
	if err := graph.ValidateAssets(g, exists); err != nil {
		return nil, err
	}
	progress(0.10, "loaded")

	packUUID := ""
	if ep := g.EntrypointIndex(); ep >= 0 {
		packUUID = g.StageNodes[ep].UUID
	}
	if packUUID == "" {
		packUUID = g.UUID
	}
	if packUUID == "" {
		packUUID = uuid.NewString()
	}
	ref := pack.DeriveRef(packUUID)

	scratch, err := pack.NewScratchDir()
	if err != nil {
		return nil, err
	}
	defer scratch.Close()

	contentDir, err := scratch.ContentDir(ref)
	if err != nil {
		return nil, err
	}

	views := graph.BuildDerivedViews(g)
	progress(0.15, "indexed")

	progress(0.20, "images start")
	if err := writeImages(zr, views.Images, contentDir, cipherImpl); err != nil {
		return nil, err
	}

	progress(0.40, "audio start")
	caching := audiocodec.NewCachingTranscoder(e.Transcoder)
	if err := writeAudio(zr, views.Audio, contentDir, scratch.Root, cipherImpl, caching); err != nil {
		return nil, err
	}

	progress(0.75, "indices")
	if err := writeIndices(g, views, contentDir, ref, packUUID, opts.Version, cipherImpl); err != nil {
		return nil, err
	}

	progress(0.85, "metadata")
	md := serialize.EncodeMD(serialize.MetadataFields{
		Title:       g.Title,
		Description: g.Description,
		UUID:        packUUID,
		Ref:         ref,
		NightMode:   g.NightMode,
	})
	if err := os.WriteFile(filepath.Join(contentDir, "md"), md, 0o644); err != nil {
		return nil, &models.IOError{Op: "write md", Err: err}
	}

	progress(0.90, "zipping")
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = deriveOutputPath(inputZipPath)
	}
	if err := pack.WriteArchive(filepath.Join(scratch.Root, ".content"), outputPath); err != nil {
		return nil, err
	}

	progress(1.00, "done")
	return &models.EncodeResult{OutputPath: outputPath, Ref: ref, PackUUID: packUUID}, nil
}

// writeIndices implements the ni/li/ri/si/bt portion of step 9.
func writeIndices(g *graph.Graph, views graph.DerivedViews, contentDir, ref, packUUID string, version models.Version, c cipher.Cipher) error {
	imagePosition := make(map[string]int, len(views.Images))
	for _, img := range views.Images {
		imagePosition[img.StageUUID] = img.Position
	}

	tx := serialize.TransitionIndex{
		AbsolutePosition: make(map[string]int, len(views.ListNodes)),
		OptionCount:      make(map[string]int, len(views.ListNodes)),
	}
	for _, entry := range views.ListNodes {
		tx.AbsolutePosition[entry.ActionID] = entry.AbsolutePosition
		tx.OptionCount[entry.ActionID] = len(entry.Options)
	}

	ni := serialize.EncodeNI(g.StageNodes, g.Version, imagePosition, tx, len(views.Images), len(views.Audio))

	stagePosition := g.StageIndexByUUID()
	li := serialize.EncodeLI(views.ListNodes, stagePosition)

	ri := serialize.EncodeResourceIndex(len(views.Images))
	si := serialize.EncodeResourceIndex(len(views.Audio))

	encryptedLI, err := c.EncryptFirstBlock(li)
	if err != nil {
		return &models.IOError{Op: "encrypt li", Err: err}
	}
	encryptedRI, err := c.EncryptFirstBlock(ri)
	if err != nil {
		return &models.IOError{Op: "encrypt ri", Err: err}
	}
	encryptedSI, err := c.EncryptFirstBlock(si)
	if err != nil {
		return &models.IOError{Op: "encrypt si", Err: err}
	}

	var packUUIDBytes [16]byte
	if parsed, err := uuid.Parse(packUUID); err == nil {
		copy(packUUIDBytes[:], parsed[:])
	}
	bt, err := serialize.EncodeBT(version, encryptedRI, packUUIDBytes)
	if err != nil {
		return err
	}

	files := map[string][]byte{
		"ni": ni,
		"li": encryptedLI,
		"ri": encryptedRI,
		"si": encryptedSI,
		"bt": bt,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(contentDir, name), data, 0o644); err != nil {
			return &models.IOError{Op: fmt.Sprintf("write %s", name), Err: err}
		}
	}
	return nil
}

// deriveOutputPath builds a sibling "<name>.native.zip" next to the input
// when the caller does not supply an explicit output path.
func deriveOutputPath(inputZipPath string) string {
	dir := filepath.Dir(inputZipPath)
	base := filepath.Base(inputZipPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".native.zip")
}
