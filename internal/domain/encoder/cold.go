package encoder

import "context"

type coldKey struct{}

// ColdContext marks ctx as executing on the cold path. The worker pool wraps
// every task context with it; nothing else should.
func ColdContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, coldKey{}, true)
}

// onColdPath reports whether ctx carries the cold-path marker.
func onColdPath(ctx context.Context) bool {
	v, _ := ctx.Value(coldKey{}).(bool)
	return v
}

// mustBeCold panics when an asynchronous-only encoder is invoked outside the
// cold path. Calling these encoders synchronously is a programming error, not
// a runtime condition, so it fails loudly.
func mustBeCold(ctx context.Context, name string) {
	if !onColdPath(ctx) {
		panic("encoder: " + name + " must be invoked through the cold path")
	}
}
