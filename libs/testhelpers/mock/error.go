package mock

// SafeError converts a recorded return value to an error, treating nil as no error.
func SafeError(v interface{}) error {
	if v == nil {
		return nil
	}
	return v.(error)
}
