//go:build linux && cgo

package utils

import (
	"bytes"
	"fmt"
	"image"

	"github.com/jdeng/goheif"
)

// decodeHEIC handles the iPhone camera formats image.Decode does not
// register. Only available on cgo builds; libheif does the actual work.
func decodeHEIC(data []byte) (image.Image, error) {
	img, err := goheif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode heic: %w", err)
	}
	return img, nil
}
