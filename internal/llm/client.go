package llm

import (
	"context"
	"errors"
	"io"
)

// ErrNoContent is returned when a provider answers without any text payload.
var ErrNoContent = errors.New("llm: no response content")

// Request is a single-turn generation call.
type Request struct {
	// Model overrides the client's default model when non-empty.
	Model       string
	System      string
	Prompt      string
	Temperature float32
	// JSON asks the provider for a JSON object response.
	JSON bool
}

type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Close releases c if it holds connections (Gemini keeps a gRPC channel).
// Clients without resources are left alone.
func Close(c Client) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func modelOr(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}
