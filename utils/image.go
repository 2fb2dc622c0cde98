package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	AvatarMaxWidth = 800
	AvatarQuality  = 70
)

// CompressImage downscales to at most maxWidth pixels wide, keeping aspect
// ratio, and re-encodes as JPEG. The returned file keeps the base name with
// a .jpg extension.
func CompressImage(f File, maxWidth, quality int) (File, error) {
	data, err := f.ReadAll()
	if err != nil {
		return File{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return File{}, fmt.Errorf("failed to encode image: %w", err)
	}

	name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".jpg"
	return FileFromBytes(name, "image/jpeg", buf.Bytes()), nil
}
