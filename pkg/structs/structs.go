// Package structs generic helpers
package structs

// If returns a when cond is true, otherwise b
func If[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// Ref returns a pointer to v
func Ref[T any](v T) *T {
	return &v
}

// Map applies f to every element of in
func Map[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for i := range in {
		out = append(out, f(in[i]))
	}
	return out
}
