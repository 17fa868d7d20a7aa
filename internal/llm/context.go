package llm

import "context"

// Purposes label each call in the event log.
const (
	PurposeSkeleton = "skeleton"
	PurposeReview   = "review"
	PurposeSummary  = "summary"
)

type purposeKey struct{}

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom extracts the purpose label from the context, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
