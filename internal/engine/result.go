package engine

// Source records how a Result was produced.
type Source int

const (
	// SourceNone means the request was rejected before any lookup.
	SourceNone Source = iota
	SourceCache
	// SourceStore is a single direct read with no optimized alternative.
	SourceStore
	SourceAggregate
	SourceFallback
	// SourceFailed means every path was tried and the last one errored.
	SourceFailed
)

func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceCache:
		return "cache"
	case SourceStore:
		return "store"
	case SourceAggregate:
		return "aggregate"
	case SourceFallback:
		return "fallback"
	case SourceFailed:
		return "failed"
	}
	return "unknown"
}

// Result carries a fail-soft lookup. Value is the zero value (or an empty
// list) unless Found reports true; Err holds the logged failure, if any.
type Result[T any] struct {
	Value  T
	Source Source
	Err    error
}

// Found reports whether Value holds data from the cache or the store.
func (r Result[T]) Found() bool {
	switch r.Source {
	case SourceCache, SourceStore, SourceAggregate, SourceFallback:
		return true
	}
	return false
}

// Attempted reports whether the engine did any work for the request.
func (r Result[T]) Attempted() bool { return r.Source != SourceNone }
