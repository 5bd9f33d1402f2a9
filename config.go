package adapter

import (
	"time"

	"github.com/imarval/mele-sap-adapter/record"
)

// Config holds the configuration for an Adapter instance.
type Config struct {
	// MaxRetries is the retry budget per event before it moves to the DLQ.
	MaxRetries int

	// DisableCommit suppresses the follow-up transaction commit after
	// write-style BAPI calls.
	DisableCommit bool

	// PhysicalDelete requests actual deletion for Delete events instead of
	// the deletion-flag update. Fails for entities without delete support.
	PhysicalDelete bool

	// Tenant is the default SAP tenant context stamped onto derived records.
	// An event's context.tenantId, when present, overrides the client.
	Tenant record.Tenant

	// ShutdownTimeout bounds the wait for in-flight events on shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		Tenant: record.Tenant{
			Client:      "100",
			CompanyCode: "1000",
			Plant:       "0001",
			Warehouse:   "W001",
			Language:    "EN",
		},
		ShutdownTimeout: 30 * time.Second,
	}
}
