package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Bochyn/Image-to-video/internal/ai"
	_ "golang.org/x/image/webp"
)

// readImage loads an input image and checks that it decodes.
func readImage(path, op string) (ai.Image, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return ai.Image{}, newError(KindImageNotFound, op, fmt.Errorf("no image at %s", path))
	}
	if err != nil {
		return ai.Image{}, newError(KindIO, op, err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ai.Image{}, newError(KindIO, op, err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return ai.Image{}, newError(KindIO, op, fmt.Errorf("cannot decode %s: %w", path, err))
	}
	return ai.Image{MIMEType: "image/" + format, Data: b}, nil
}

// encodeAs re-encodes data when its actual encoding differs from the
// configured output format. Only png and jpg can be written.
func encodeAs(data []byte, format string) ([]byte, error) {
	var want string
	switch format {
	case "png":
		want = "image/png"
	case "jpg":
		want = "image/jpeg"
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if http.DetectContentType(data) == want {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	var buf bytes.Buffer
	if want == "image/png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return nil, fmt.Errorf("encode generated image as %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to path through a temporary file in the same dir.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.part")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
