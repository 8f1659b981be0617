//go:build onnx

package main

import (
	"github.com/becomeliminal/mindcare/config"
	"github.com/becomeliminal/mindcare/memory"
	"github.com/becomeliminal/mindcare/memory/embedder/onnx"
)

func newONNXEmbedder(cfg config.Config) (memory.Embedder, error) {
	return onnx.New(onnx.Config{
		ModelPath:     cfg.ONNXModel,
		TokenizerPath: cfg.ONNXTokenizer,
		LibraryPath:   cfg.ONNXLibrary,
	})
}
