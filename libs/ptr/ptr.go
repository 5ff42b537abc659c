// Package ptr returns pointers to inline values for SDK input structs.
package ptr

// Bool returns a pointer to the provided value.
func Bool(b bool) *bool {
	return &b
}

// Int64 returns a pointer to the provided value.
func Int64(i int64) *int64 {
	return &i
}

// String returns a pointer to the provided value.
func String(s string) *string {
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
