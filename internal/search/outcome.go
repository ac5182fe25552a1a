package search

// failurePolicy says what an upstream failure means to the caller of a fetch.
type failurePolicy int

const (
	// abortOnFailure: the whole search fails (page fetches).
	abortOnFailure failurePolicy = iota
	// dropOnFailure: only the item at hand is discarded (detail fetches).
	dropOnFailure
)

// fetchResult is the outcome of one upstream call in the pipeline.
type fetchResult[T any] struct {
	value  T
	err    error
	policy failurePolicy
}

func fetched[T any](value T, err error, policy failurePolicy) fetchResult[T] {
	return fetchResult[T]{value: value, err: err, policy: policy}
}

func (r fetchResult[T]) aborts() bool {
	return r.err != nil && r.policy == abortOnFailure
}

func (r fetchResult[T]) dropped() bool {
	return r.err != nil && r.policy == dropOnFailure
}
