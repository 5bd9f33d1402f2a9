// Package adapter relays business-entity change events from the Mele
// integration hub to an on-premise SAP ERP system.
//
// Adapter is a library, not a service. Import it into your application to
// map each hub event to the right BAPI call, shape the call's parameter
// structure, and normalize SAP's heterogeneous response and error shapes
// into one Outcome type with a retry decision.
//
// Key features:
//   - Canonical event model accepting both hub transports' field casings
//   - Data-driven entity/BAPI mapping registry with JSON Schema validation
//   - Per-entity parameter builders with documented defaults and a generic
//     fallback
//   - Write calls with best-effort transaction commit
//   - Normalized outcomes with severity-based failure classification
//   - Bounded queue handoff with a worker-pool engine
//   - Dead letter queue with replay, memory and Redis backends
//
// Quick start:
//
//	a, err := adapter.New(
//	    adapter.WithCaller(rfcConn),
//	    adapter.WithStore(memory.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out := a.ProcessEvent(ctx, map[string]any{
//	    "eventType":  "Create",
//	    "entityType": "Product",
//	    "eventId":    "evt-1",
//	    "timestamp":  "2024-01-01T00:00:00Z",
//	    "payload":    map[string]any{"data": map[string]any{"id": "MAT001"}},
//	})
package adapter
