package capability

type taggedError struct {
	err          error
	capabilities []Capability
}

// Tag returns err marked with the given capabilities. The returned error
// unwraps to err and reports the same message. Tagging an already tagged
// error merges the capabilities instead of nesting wrappers.
func Tag(err error, capabilities ...Capability) error {
	if err == nil {
		return nil
	}

	if tagged, ok := err.(*taggedError); ok {
		merged := append([]Capability{}, tagged.capabilities...)
		for _, c := range capabilities {
			if !tagged.has(c) {
				merged = append(merged, c)
			}
		}
		return &taggedError{err: tagged.err, capabilities: merged}
	}

	return &taggedError{
		err:          err,
		capabilities: append([]Capability{}, capabilities...),
	}
}

func (e *taggedError) Error() string {
	return e.err.Error()
}

func (e *taggedError) Unwrap() error {
	return e.err
}

func (e *taggedError) has(c Capability) bool {
	for _, tagged := range e.capabilities {
		if tagged == c {
			return true
		}
	}
	return false
}
