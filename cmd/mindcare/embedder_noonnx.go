//go:build !onnx

package main

import (
	"errors"

	"github.com/becomeliminal/mindcare/config"
	"github.com/becomeliminal/mindcare/memory"
)

func newONNXEmbedder(cfg config.Config) (memory.Embedder, error) {
	return nil, errors.New("onnx embedder not compiled in; rebuild with -tags onnx")
}
