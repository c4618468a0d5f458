package messages

import (
	"github.com/bitrise-steplib/steps-test-run-reporter/capability"
)

// Inspector selects the errors whose capabilities the classifier looks at,
// in order of precedence.
type Inspector func(err error) []error

// InspectOutermost only looks at err itself.
func InspectOutermost(err error) []error {
	if err == nil {
		return nil
	}
	return []error{err}
}

// InspectChain looks at err and every error it wraps, depth first.
func InspectChain(err error) []error {
	var chain []error

	var walk func(err error)
	walk = func(err error) {
		if err == nil {
			return
		}
		chain = append(chain, err)
		for _, child := range unwrapAll(err) {
			walk(child)
		}
	}
	walk(err)

	return chain
}

// Classifier derives the failure cause of an error from its capabilities.
// A timeout outranks an assertion failure, which outranks a plain error.
type Classifier struct {
	// Capabilities resolves capabilities, defaults to capability.DefaultRegistry().
	Capabilities *capability.Registry
	// Inspect selects the errors to look at, defaults to InspectOutermost.
	Inspect Inspector
}

// Classify ...
func (c Classifier) Classify(err error) FailureCause {
	registry := c.Capabilities
	if registry == nil {
		registry = capability.DefaultRegistry()
	}
	inspect := c.Inspect
	if inspect == nil {
		inspect = InspectOutermost
	}

	isAssertion := false
	for _, e := range inspect(err) {
		if registry.Has(e, capability.TimeoutFailure) {
			return FailureCauseTimeout
		}
		if registry.Has(e, capability.AssertionFailure) {
			isAssertion = true
		}
	}

	if isAssertion {
		return FailureCauseAssertion
	}
	return FailureCauseException
}

// Classify derives the failure cause of err looking only at err itself.
func Classify(err error) FailureCause {
	return Classifier{}.Classify(err)
}

func unwrapAll(err error) []error {
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		var children []error
		for _, child := range u.Unwrap() {
			if child != nil {
				children = append(children, child)
			}
		}
		return children
	case interface{ Unwrap() error }:
		if child := u.Unwrap(); child != nil {
			return []error{child}
		}
	}
	return nil
}
