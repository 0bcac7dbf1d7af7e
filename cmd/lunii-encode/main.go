// Command lunii-encode converts a Studio Pack ZIP into a native on-device
// pack ZIP from the command line (§4.10), grounded on the teacher toolkit's
// cmd/haustorium CLI layout and urfave/cli/v3 usage.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lunii-encode/native-pack-encoder/models"
	"github.com/lunii-encode/native-pack-encoder/service"
)

func main() {
	appl := &cli.Command{
		Name:  "lunii-encode",
		Usage: "Convert a Studio Pack ZIP into a native on-device pack ZIP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "path to the input Studio Pack ZIP"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "path to write the native pack ZIP (default: <in> with its extension replaced by .native.zip)"},
			&cli.StringFlag{Name: "version", Aliases: []string{"V"}, Value: "V2", Usage: "target firmware version: V2 or V3"},
			&cli.StringFlag{Name: "aes-key", Usage: "hex AES key, required for V3"},
			&cli.StringFlag{Name: "aes-iv", Usage: "hex AES iv, required for V3"},
			&cli.StringFlag{Name: "ffmpeg", Value: "ffmpeg", Usage: "path to the ffmpeg-compatible transcoder binary"},
		},
		Action: runEncode,
	}

	if err := appl.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runEncode(ctx context.Context, cmd *cli.Command) error {
	inPath := cmd.String("in")
	outPath := cmd.String("out")
	version := models.Version(cmd.String("version"))
	if !version.IsValid() {
		return fmt.Errorf("invalid version %q: must be V2 or V3", version)
	}

	opts := models.EncodeOptions{
		OutputPath: outPath,
		Version:    version,
		Progress: func(fraction float64, message string) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", fraction*100, message)
		},
	}

	if version == models.VersionV3 {
		key, err := hex.DecodeString(cmd.String("aes-key"))
		if err != nil {
			return fmt.Errorf("invalid --aes-key: %w", err)
		}
		iv, err := hex.DecodeString(cmd.String("aes-iv"))
		if err != nil {
			return fmt.Errorf("invalid --aes-iv: %w", err)
		}
		opts.AESKey, opts.AESIV = key, iv
	}

	encoderService := service.NewEncoderService(cmd.String("ffmpeg"))
	result, err := encoderService.Encode(inPath, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s (ref %s)\n", result.OutputPath, result.Ref)
	return nil
}
