package ai

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini embedding model used for beers and queries.
const DefaultModel = "text-embedding-004"

// ErrNoAPIKey is returned by NewClient when GEMINI_API_KEY is unset.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY environment variable is required")

// Embedder turns text into a vector. EmbedString returns the vector both as a
// storable blob and as floats.
type Embedder interface {
	EmbedString(ctx context.Context, text string) ([]byte, []float32, error)
}

// Client wraps the GenAI client.
type Client struct {
	genaiClient *genai.Client
	model       *genai.EmbeddingModel
}

// Available reports whether an API key is configured.
func Available() bool {
	return os.Getenv("GEMINI_API_KEY") != ""
}

// NewClient creates a connected AI client.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	model := os.Getenv("GEMINI_EMBED_MODEL")
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		genaiClient: c,
		model:       c.EmbeddingModel(model),
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

func (c *Client) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	res, err := c.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, nil, err
	}
	if res.Embedding == nil {
		return nil, nil, fmt.Errorf("AI returned empty embedding")
	}

	blob, err := FloatsToBytes(res.Embedding.Values)
	if err != nil {
		return nil, nil, err
	}
	return blob, res.Embedding.Values, nil
}

// --- Vector Math Helpers ---

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the lengths differ or either vector is all zeros.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// FloatsToBytes converts a []float32 slice to a little-endian BLOB for SQLite.
func FloatsToBytes(floats []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, floats); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToFloats converts the stored byte slice back to []float32.
func BytesToFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid byte length %d for float32 slice", len(b))
	}
	floats := make([]float32, len(b)/4)
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &floats)
	return floats, err
}
