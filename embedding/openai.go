package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/BaSui01/coachflow/config"
	"github.com/BaSui01/coachflow/types"
)

// Encoding and context limits per embedding model. Unknown models fall back
// to cl100k_base with a conservative limit.
var modelLimits = map[string]struct {
	encoding  string
	maxTokens int
}{
	"text-embedding-3-large": {encoding: "cl100k_base", maxTokens: 8191},
	"text-embedding-3-small": {encoding: "cl100k_base", maxTokens: 8191},
	"text-embedding-ada-002": {encoding: "cl100k_base", maxTokens: 8191},
}

// OpenAIProvider implements Provider against an OpenAI-compatible
// /v1/embeddings endpoint. Inputs longer than the model's token limit are
// truncated with tiktoken before dispatch.
type OpenAIProvider struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	maxTokens  int
	encoding   string

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
}

// NewOpenAIProvider creates an OpenAI-compatible embedding provider.
func NewOpenAIProvider(cfg config.EmbeddingConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	limits, ok := modelLimits[cfg.Model]
	if !ok {
		limits.encoding = "cl100k_base"
		limits.maxTokens = 8191
	}

	return &OpenAIProvider{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxTokens:  limits.maxTokens,
		encoding:   limits.encoding,
	}
}

func (p *OpenAIProvider) Name() string    { return "openai-embedding" }
func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

type embedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedQuery embeds a single query string.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vecs, err := p.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds multiple documents in one request.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	input := make([]string, len(documents))
	for i, doc := range documents {
		input[i] = p.truncate(doc)
	}

	respBody, err := p.doRequest(ctx, embedRequest{
		Input:      input,
		Model:      p.model,
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, types.NewTransient(types.ErrEmbeddingFailed, "decode embedding response").WithCause(err)
	}
	if len(resp.Data) != len(input) {
		return nil, types.NewTransient(types.ErrEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(input), len(resp.Data)))
	}

	out := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, types.NewTransient(types.ErrEmbeddingFailed,
				fmt.Sprintf("embedding index %d out of range", d.Index))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// truncate bounds the input to the model's token limit. Tokenizer init
// failures fall back to a rune-count heuristic rather than failing the embed.
func (p *OpenAIProvider) truncate(text string) string {
	p.encOnce.Do(func() {
		p.enc, p.encErr = tiktoken.GetEncoding(p.encoding)
	})
	if p.encErr != nil || p.enc == nil {
		runes := []rune(text)
		if len(runes) > p.maxTokens*4 {
			return string(runes[:p.maxTokens*4])
		}
		return text
	}

	tokens := p.enc.Encode(text, nil, nil)
	if len(tokens) <= p.maxTokens {
		return text
	}
	return p.enc.Decode(tokens[:p.maxTokens])
}

func (p *OpenAIProvider) doRequest(ctx context.Context, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, types.NewTransient(types.ErrEmbeddingFailed, "embedding request failed").WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewTransient(types.ErrEmbeddingFailed, "read embedding response").WithCause(err)
	}

	if resp.StatusCode >= 400 {
		e := types.NewError(types.ErrEmbeddingFailed,
			fmt.Sprintf("embedding endpoint returned %d: %s", resp.StatusCode, string(respBody)))
		// Rate limits and server errors are worth retrying; 4xx are not.
		e.Retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, e
	}

	return respBody, nil
}
