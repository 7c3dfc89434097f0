package domain

// Result carries a stage output that may have been replaced by a documented
// default. Cause is set when Fallback is true.
type Result[T any] struct {
	Value    T
	Fallback bool
	Cause    error
}

// Resolved wraps a value produced by the happy path.
func Resolved[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded wraps a default value substituted after cause.
func Degraded[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Fallback: true, Cause: cause}
}
