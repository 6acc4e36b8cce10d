//go:build !linux || !cgo

package utils

import (
	"errors"
	"image"
)

var errHEICUnsupported = errors.New("heic decoding requires a cgo build")

func decodeHEIC(_ []byte) (image.Image, error) {
	return nil, errHEICUnsupported
}
