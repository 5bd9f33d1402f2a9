package adapter

import "github.com/imarval/mele-sap-adapter/internal/entity"

// Entity is the base type embedded by adapter domain objects.
type Entity = entity.Entity

// NewEntity returns an Entity with both timestamps set to the current UTC time.
func NewEntity() Entity {
	return entity.New()
}
