package ctxutil

import "context"

type requestKey struct{}

// Request identifies one API call in logs, traces and error bodies.
type Request struct {
	ID      string
	TraceID string
}

func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(Default(ctx), requestKey{}, r)
}

func RequestFrom(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return Request{}, false
	}
	r, ok := ctx.Value(requestKey{}).(Request)
	return r, ok
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
