package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// ImageExtractor performs optical character recognition on JPEG/PNG
// uploads by shelling out to the tesseract binary. The image header is
// validated first so an obviously corrupt upload fails fast with a useful
// message instead of an OCR stack trace.
type ImageExtractor struct {
	binary string
}

func NewImageExtractor(binary string) *ImageExtractor {
	if binary == "" {
		binary = "tesseract"
	}
	return &ImageExtractor{binary: binary}
}

func (e *ImageExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("decode image header: %w", err)
	}

	tmp, err := os.CreateTemp("", "docflow-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}

	// "stdout" as the output base makes tesseract print the recognized
	// text instead of writing a .txt next to the input.
	cmd := exec.CommandContext(ctx, e.binary, tmp.Name(), "stdout")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run %s: %w: %s", e.binary, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
