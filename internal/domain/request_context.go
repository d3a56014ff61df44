package domain

// RequestContext is passed explicitly into every domain service call
// alongside a context.Context. It is a plain value, not ambient state:
// there is deliberately no package-level "current request" accessor.
// The per-request deadline itself lives on the context.Context,
// installed once by middleware, not duplicated here.
type RequestContext struct {
	Principal Principal
	RequestID string
}
