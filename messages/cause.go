package messages

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// FailureCause is the triage category of a failed test.
type FailureCause int

const (
	// FailureCauseException is an unexpected error.
	FailureCauseException FailureCause = iota
	// FailureCauseAssertion is a failed assertion.
	FailureCauseAssertion
	// FailureCauseTimeout is a test that ran out of time.
	FailureCauseTimeout
)

var failureCauseNames = map[FailureCause]string{
	FailureCauseException: "Exception",
	FailureCauseAssertion: "Assertion",
	FailureCauseTimeout:   "Timeout",
}

// IsValid reports whether c is one of the defined causes.
func (c FailureCause) IsValid() bool {
	_, ok := failureCauseNames[c]
	return ok
}

func (c FailureCause) String() string {
	if name, ok := failureCauseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("FailureCause(%d)", int(c))
}

func failureCauseTypeName() string {
	t := reflect.TypeOf(FailureCause(0))
	return t.PkgPath() + "." + t.Name()
}

func validateFailureCause(field string, c FailureCause) error {
	if !c.IsValid() {
		return newInvalidArgumentError(field, "%s is not a valid value from %s", field, failureCauseTypeName())
	}
	return nil
}

// parseFailureCause accepts the name of a cause or its integer value.
func parseFailureCause(field string, raw interface{}) (FailureCause, error) {
	switch v := raw.(type) {
	case string:
		for c, name := range failureCauseNames {
			if name == v {
				return c, nil
			}
		}
		return 0, newInvalidArgumentError(field, "%s is not a valid value from %s", field, failureCauseTypeName())
	case json.Number, float64, int, int64:
		i, err := toInt(v)
		if err != nil {
			return 0, newInvalidArgumentError(field, "%s is not a valid value from %s", field, failureCauseTypeName())
		}
		c := FailureCause(i)
		return c, validateFailureCause(field, c)
	default:
		return 0, newInvalidArgumentError(field, "%s is not a valid value from %s", field, failureCauseTypeName())
	}
}
