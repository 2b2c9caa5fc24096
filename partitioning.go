package streaming

// PartitionScheme describes how Rows are distributed across parallel instances
// of the downstream operator
type PartitionScheme string

const (
	// KeyedByFuncScheme routes Rows by a key produced by a user KeyingOperation
	KeyedByFuncScheme PartitionScheme = "keyed_by_func"
	// KeyedByFieldsScheme routes Rows by a key drawn from one or more fields
	KeyedByFieldsScheme PartitionScheme = "keyed_by_fields"
	// BroadcastScheme sends every Row to every parallel instance
	BroadcastScheme PartitionScheme = "broadcast"
	// ShuffleScheme routes Rows to instances uniformly at random
	ShuffleScheme PartitionScheme = "shuffle"
	// ForwardScheme keeps Rows on the local instance
	ForwardScheme PartitionScheme = "forward"
	// DistributeScheme routes Rows to instances round-robin
	DistributeScheme PartitionScheme = "distribute"
)

// Partitioning is the strategy attached to a node describing how its Rows
// reach the next operator's parallel instances. At most one Partitioning is
// attached to a node at a time; attaching another replaces it. When Grouped is
// true the strategy additionally changes reduction semantics downstream:
// reduce and aggregate operators built on a grouped node keep state
// independently per key.
type Partitioning struct {
	Scheme  PartitionScheme
	Grouped bool

	// Key is the extractor realizing a KeyedByFuncScheme. It is sanitized once,
	// when the strategy is attached, and reused for every routed Row.
	Key KeyingOperation

	// Fields are the field references realizing a KeyedByFieldsScheme
	Fields []FieldRef

	// KeyName is the symbol name of the user key extractor, for diagnostics
	KeyName string
}

// IsKeyed returns true iff this strategy routes Rows by key
func (p *Partitioning) IsKeyed() bool {
	return p != nil && (p.Scheme == KeyedByFuncScheme || p.Scheme == KeyedByFieldsScheme)
}

// IsGrouping returns true iff this strategy changes downstream reduction
// semantics to per-key state
func (p *Partitioning) IsGrouping() bool {
	return p != nil && p.Grouped && p.IsKeyed()
}
