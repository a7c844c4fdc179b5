package llm

import "context"

// TokenHandler receives completion fragments in emission order. Returning an
// error aborts the stream.
type TokenHandler func(token string) error

type Provider interface {
	// Complete runs one completion call. jsonMode asks the model for a
	// parseable JSON body (structured extraction, FAQ generation).
	Complete(ctx context.Context, prompt string, jsonMode bool) (string, error)

	// CompleteStream runs one completion call and hands each incremental
	// fragment to handler as it arrives.
	CompleteStream(ctx context.Context, prompt string, handler TokenHandler) error
}
