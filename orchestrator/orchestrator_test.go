package orchestrator

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lunii-encode/native-pack-encoder/cipher"
	"github.com/lunii-encode/native-pack-encoder/models"
)

// fakeTranscoder avoids shelling out to a real ffmpeg binary in tests; it
// just writes a fixed payload to outPath.
type fakeTranscoder struct{ calls int }

func (f *fakeTranscoder) Transcode(ctx context.Context, inPath, outPath string) error {
	f.calls++
	return os.WriteFile(outPath, []byte("fake-mp3-bytes"), 0o644)
}

func solidPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type storyJSON struct {
	StageNodes  []map[string]any `json:"stageNodes"`
	ActionNodes []map[string]any `json:"actionNodes"`
}

func writeTestZip(t *testing.T, outPath string, story storyJSON, assets map[string][]byte) {
	t.Helper()
	f, err := os.Create(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)

	storyBytes, err := json.Marshal(story)
	if err != nil {
		t.Fatal(err)
	}
	w, err := zw.Create("story.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(storyBytes); err != nil {
		t.Fatal(err)
	}
	for name, data := range assets {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEncodeSingleStoryPack(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "pack.zip")

	story := storyJSON{
		StageNodes: []map[string]any{
			{
				"uuid":  "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
				"kind":  "entrypoint",
				"name":  "T",
				"image": "c.png",
				"audio": "a.mp3",
			},
		},
		ActionNodes: []map[string]any{},
	}
	writeTestZip(t, inPath, story, map[string][]byte{
		"c.png": solidPNG(t),
		"a.mp3": []byte("pretend source audio"),
	})

	enc := NewEncoder(&fakeTranscoder{})
	var events []string
	result, err := enc.Encode(inPath, models.EncodeOptions{
		OutputPath: filepath.Join(dir, "out.zip"),
		Version:    models.VersionV2,
		Progress: func(frac float64, msg string) {
			events = append(events, msg)
		},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result.Ref != "AAAAAAAA" {
		t.Fatalf("ref = %q, want AAAAAAAA", result.Ref)
	}
	if len(events) == 0 || events[len(events)-1] != "done" {
		t.Fatalf("expected final progress event 'done', got %v", events)
	}

	zr, err := zip.OpenReader(result.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	names := make(map[string]*zip.File)
	for _, f := range zr.File {
		names[f.Name] = f
	}
	for _, want := range []string{
		".content/AAAAAAAA/ni", ".content/AAAAAAAA/li", ".content/AAAAAAAA/ri", ".content/AAAAAAAA/si",
		".content/AAAAAAAA/bt", ".content/AAAAAAAA/md",
		".content/AAAAAAAA/rf/000/00000000", ".content/AAAAAAAA/sf/000/00000000",
	} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing output entry %q", want)
		}
	}

	rc, err := names[".content/AAAAAAAA/ni"].Open()
	if err != nil {
		t.Fatal(err)
	}
	ni, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if len(ni) != 512+44 {
		t.Fatalf("ni length = %d, want %d", len(ni), 512+44)
	}
	rec := ni[512:]
	if int32(binary.LittleEndian.Uint32(rec[0:4])) != 0 {
		t.Errorf("image position = %d, want 0", int32(binary.LittleEndian.Uint32(rec[0:4])))
	}
	for _, off := range []int{8, 12, 16, 20, 24, 28} {
		if v := int32(binary.LittleEndian.Uint32(rec[off : off+4])); v != -1 {
			t.Errorf("transition field at %d = %d, want -1", off, v)
		}
	}
}

func TestEncodeTwoOptionMenu(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "pack.zip")

	story := storyJSON{
		StageNodes: []map[string]any{
			{
				"uuid":          "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
				"kind":          "entrypoint",
				"name":          "root",
				"ok_transition": map[string]any{"action_ref": "act-1", "option_index": 0},
			},
			{"uuid": "11111111-1111-1111-1111-111111111111", "kind": "story", "name": "s1"},
			{"uuid": "22222222-2222-2222-2222-222222222222", "kind": "story", "name": "s2"},
		},
		ActionNodes: []map[string]any{
			{"id": "act-1", "options": []string{"11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"}},
		},
	}
	writeTestZip(t, inPath, story, nil)

	enc := NewEncoder(&fakeTranscoder{})
	result, err := enc.Encode(inPath, models.EncodeOptions{
		OutputPath: filepath.Join(dir, "out.zip"),
		Version:    models.VersionV2,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	zr, err := zip.OpenReader(result.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var li []byte
	for _, f := range zr.File {
		if f.Name == ".content/"+result.Ref+"/li" {
			rc, _ := f.Open()
			li, _ = io.ReadAll(rc)
		}
	}
	// li is stored encrypted; V2 encrypts its first block with XXTEA.
	li = cipher.XXTEADecrypt(li, cipher.CommonKeyV2)
	if len(li) != 8 {
		t.Fatalf("li length = %d, want 8", len(li))
	}
	if binary.LittleEndian.Uint32(li[0:4]) != 1 || binary.LittleEndian.Uint32(li[4:8]) != 2 {
		t.Fatalf("li contents wrong: %v", li)
	}
}

func TestEncodeIdempotentOnAlreadyNativePack(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "native.zip")

	f, err := os.Create(inPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{
		".content/AAAAAAAA/ni", ".content/AAAAAAAA/li", ".content/AAAAAAAA/ri", ".content/AAAAAAAA/si",
		".content/AAAAAAAA/rf/000/00000000", ".content/AAAAAAAA/sf/000/00000000",
	} {
		w, _ := zw.Create(name)
		w.Write([]byte("x"))
	}
	zw.Close()
	f.Close()

	enc := NewEncoder(&fakeTranscoder{})
	result, err := enc.Encode(inPath, models.EncodeOptions{Version: models.VersionV2})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result.OutputPath != inPath {
		t.Fatalf("expected idempotent encode to return input path unchanged, got %q", result.OutputPath)
	}
	if result.Ref != "AAAAAAAA" {
		t.Fatalf("ref = %q, want AAAAAAAA", result.Ref)
	}
}

func TestEncodeV3WithoutKeyFails(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "pack.zip")
	story := storyJSON{
		StageNodes: []map[string]any{
			{"uuid": "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", "kind": "entrypoint", "name": "T"},
		},
	}
	writeTestZip(t, inPath, story, nil)

	enc := NewEncoder(&fakeTranscoder{})
	_, err := enc.Encode(inPath, models.EncodeOptions{Version: models.VersionV3})
	if err == nil {
		t.Fatal("expected ConfigurationError for V3 without key/iv")
	}
	if _, ok := err.(*models.ConfigurationError); !ok {
		t.Fatalf("expected *models.ConfigurationError, got %T: %v", err, err)
	}
}
