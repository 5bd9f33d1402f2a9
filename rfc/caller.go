// Package rfc orchestrates BAPI invocations over the shared SAP RFC session.
//
// The actual transport (session management, marshalling, reconnection) is a
// collaborator behind the Caller interface; this package owns call
// serialization, the optional transactional commit and connection statistics.
package rfc

import "context"

// Caller is the remote-call boundary to the SAP system: invoke a function
// module by name with a parameter bag and receive a response bag or a
// transport error. No other capability is assumed.
type Caller interface {
	Call(ctx context.Context, name string, parameters map[string]any) (map[string]any, error)
}

// CallerFunc adapts a plain function to the Caller interface.
type CallerFunc func(ctx context.Context, name string, parameters map[string]any) (map[string]any, error)

// Call implements Caller.
func (f CallerFunc) Call(ctx context.Context, name string, parameters map[string]any) (map[string]any, error) {
	return f(ctx, name, parameters)
}
