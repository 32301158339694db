package cache

// CacheError struct
type CacheError struct {
	Message string
	Err     error
}

// Error func
func (ce *CacheError) Error() string {
	if ce.Err == nil {
		return ce.Message
	}

	return ce.Message + ": " + ce.Err.Error()
}

// Unwrap exposes the underlying Redis error
func (ce *CacheError) Unwrap() error {
	return ce.Err
}
