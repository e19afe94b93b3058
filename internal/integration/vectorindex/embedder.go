package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"regexp"
	"strings"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/futig/crm-assistant/internal/config"
	chromem "github.com/philippgille/chromem-go"
)

const DefaultHashDimensions = 512

// NewOpenAIEmbeddingFunc builds an OpenAI-compatible embedder and adapts it for chromem
func NewOpenAIEmbeddingFunc(ctx context.Context, cfg config.EmbeddingConfig, client *http.Client) (chromem.EmbeddingFunc, error) {
	embedder, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		HTTPClient: client,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return EmbeddingFuncFromEmbedder(embedder), nil
}

// EmbeddingFuncFromEmbedder wraps an eino Embedder as chromem.EmbeddingFunc
func EmbeddingFuncFromEmbedder(embedder embedding.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		embeddings, err := embedder.EmbedStrings(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(embeddings) == 0 {
			return nil, errors.New("no embeddings returned")
		}

		result := make([]float32, len(embeddings[0]))
		for i, v := range embeddings[0] {
			result[i] = float32(v)
		}
		return result, nil
	}
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "don", "should", "now", "what", "which", "who", "how", "do",
		"does", "i", "you", "me", "my", "your", "we", "our",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// NewHashingEmbeddingFunc returns a deterministic local embedding: term counts hashed
// into a fixed number of buckets and L2-normalized. It needs no corpus and no network,
// which makes it usable offline and in tests.
func NewHashingEmbeddingFunc(dimensions int) chromem.EmbeddingFunc {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}

	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, dimensions)

		for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
			if _, isStop := stopwords[tok]; isStop {
				continue
			}
			h := fnv.New32a()
			_, _ = h.Write([]byte(tok))
			vec[h.Sum32()%uint32(dimensions)]++
		}

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			// a zero vector has no direction to normalize
			vec[0] = 1
			return vec, nil
		}

		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
		return vec, nil
	}
}
