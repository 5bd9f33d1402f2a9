package redis

// Key prefixes for primary entity storage.
const (
	prefixEvent = "sapadapter:evt:"
	prefixDLQ   = "sapadapter:dlq:"
)

// Keys for sorted set indexes (scored by creation/failure time).
const (
	zEventAll    = "sapadapter:z:evt:all"
	zEventEntity = "sapadapter:z:evt:entity:" // + entity type
	zDLQAll      = "sapadapter:z:dlq:all"
	zDLQEntity   = "sapadapter:z:dlq:entity:" // + entity type
)

// entityKey returns the primary key for an entity.
func entityKey(prefix, id string) string {
	return prefix + id
}
