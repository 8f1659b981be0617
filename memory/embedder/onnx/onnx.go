//go:build onnx

// Package onnx runs all-MiniLM-L6-v2 locally through ONNX Runtime, the
// model the default distance threshold is calibrated for.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// DefaultDimensions is the hidden size of all-MiniLM-L6-v2.
	DefaultDimensions = 384

	// DefaultMaxSequenceLength is the token window including [CLS] and [SEP].
	DefaultMaxSequenceLength = 128
)

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json file.
	TokenizerPath string

	// LibraryPath points at libonnxruntime. Empty uses the runtime's default lookup.
	LibraryPath string

	// Dimensions is the embedding vector size (default: 384).
	Dimensions int

	// MaxSequenceLength bounds the tokens fed to the model (default: 128).
	MaxSequenceLength int
}

// Embedder generates sentence embeddings with ONNX Runtime and mean pooling.
type Embedder struct {
	mu         sync.Mutex // serialises session.Run
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
	maxLen     int
}

// New loads the model and tokenizer and initialises the runtime.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.TokenizerPath == "" {
		return nil, fmt.Errorf("TokenizerPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.MaxSequenceLength == 0 {
		cfg.MaxSequenceLength = DefaultMaxSequenceLength
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize ONNX runtime: %w", err)
		}
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create ONNX session: %w", err)
	}

	slog.Info("onnx embedder ready", "model", cfg.ModelPath, "dimensions", cfg.Dimensions)

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
		maxLen:     cfg.MaxSequenceLength,
	}, nil
}

// Embed converts text to a unit-length embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputIDs, attentionMask := e.encode(text)
	tokenTypeIDs := make([]int64, e.maxLen)

	shape := ort.NewShape(1, int64(e.maxLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typesTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()

	outputs := []ort.Value{nil}

	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typesTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("ONNX inference: %w", err)
	}
	defer func() {
		for _, output := range outputs {
			if output != nil {
				output.Destroy()
			}
		}
	}()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok || hidden == nil {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	embedding, err := e.pool(hidden.GetData(), hidden.GetShape(), attentionMask)
	if err != nil {
		return nil, err
	}
	return normalize(embedding), nil
}

// EmbedBatch embeds each text in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases ONNX resources.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// encode lays out [CLS] tokens [SEP] followed by padding.
func (e *Embedder) encode(text string) (ids, mask []int64) {
	ids = make([]int64, e.maxLen)
	mask = make([]int64, e.maxLen)

	tokens := e.tokenizer.tokenize(text)
	if len(tokens) > e.maxLen-2 {
		tokens = tokens[:e.maxLen-2]
	}

	ids[0] = e.tokenizer.cls
	mask[0] = 1
	for i, tok := range tokens {
		ids[i+1] = tok
		mask[i+1] = 1
	}
	end := len(tokens) + 1
	ids[end] = e.tokenizer.sep
	mask[end] = 1

	return ids, mask
}

// pool handles both pre-pooled [1, hidden] and token-level
// [1, seq, hidden] outputs, mean pooling the latter over attended tokens.
func (e *Embedder) pool(data []float32, shape ort.Shape, mask []int64) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	switch len(shape) {
	case 2:
		if len(data) < e.dimensions {
			return nil, fmt.Errorf("output dimension mismatch: got %d, want %d", len(data), e.dimensions)
		}
		copy(embedding, data[:e.dimensions])
		return embedding, nil

	case 3:
		if shape[0] != 1 {
			return nil, fmt.Errorf("expected batch size 1, got %d", shape[0])
		}
		seqLen, hidden := int(shape[1]), int(shape[2])
		if hidden != e.dimensions {
			return nil, fmt.Errorf("hidden size mismatch: got %d, want %d", hidden, e.dimensions)
		}

		var attended float32
		for i := 0; i < seqLen && i < len(mask); i++ {
			if mask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < hidden; j++ {
				embedding[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return embedding, nil
		}
		for j := range embedding {
			embedding[j] /= attended
		}
		return embedding, nil

	default:
		return nil, fmt.Errorf("unexpected output shape: %v", shape)
	}
}

// normalize converts embedding to unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// wordPieceTokenizer is a lowercase BERT WordPiece tokenizer over the vocab
// in a Hugging Face tokenizer.json.
type wordPieceTokenizer struct {
	vocab map[string]int
	cls   int64
	sep   int64
	unk   int64
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer %s has no vocabulary", path)
	}

	t := &wordPieceTokenizer{
		vocab: file.Model.Vocab,
		cls:   101,
		sep:   102,
		unk:   100,
	}
	if id, ok := t.vocab["[CLS]"]; ok {
		t.cls = int64(id)
	}
	if id, ok := t.vocab["[SEP]"]; ok {
		t.sep = int64(id)
	}
	if id, ok := t.vocab["[UNK]"]; ok {
		t.unk = int64(id)
	}
	return t, nil
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var ids []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			ids = append(ids, int64(id))
			continue
		}
		ids = append(ids, t.subwords(word)...)
	}
	return ids
}

// subwords splits word greedily into the longest vocabulary pieces,
// prefixing continuations with "##".
func (t *wordPieceTokenizer) subwords(word string) []int64 {
	var ids []int64
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				ids = append(ids, int64(id))
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			ids = append(ids, t.unk)
			start++
		}
	}
	return ids
}
