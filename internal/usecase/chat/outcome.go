package chat

// Outcome is the result of a best-effort pipeline step. A degraded outcome carries
// the fallback value the turn continues with and the reason the step fell back.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   error
}

func Succeeded[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

func Degraded[T any](fallback T, reason error) Outcome[T] {
	return Outcome[T]{Value: fallback, Degraded: true, Reason: reason}
}
