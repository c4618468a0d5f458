package messages

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorMetadata flattens an error tree into parallel lists. ParentIndices[i]
// is the index of the error that wraps error i, or -1 for the outermost one.
type ErrorMetadata struct {
	ParentIndices []int
	Types         []string
	Messages      []string
	StackTraces   []string
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// NewErrorMetadata walks err and everything it wraps. Wrappers that only
// decorate their child (same message, such as a stack trace or capability tag)
// are folded into the child, keeping their stack trace.
func NewErrorMetadata(err error) ErrorMetadata {
	metadata := ErrorMetadata{
		ParentIndices: []int{},
		Types:         []string{},
		Messages:      []string{},
		StackTraces:   []string{},
	}

	var walk func(err error, parent int)
	walk = func(err error, parent int) {
		stack := ""
		children := unwrapAll(err)
		for {
			if stack == "" {
				stack = stackTraceOf(err)
			}
			if len(children) != 1 || children[0].Error() != err.Error() {
				break
			}
			err = children[0]
			children = unwrapAll(err)
		}

		index := len(metadata.Types)
		metadata.ParentIndices = append(metadata.ParentIndices, parent)
		metadata.Types = append(metadata.Types, fmt.Sprintf("%T", err))
		metadata.Messages = append(metadata.Messages, ownMessage(err, children))
		metadata.StackTraces = append(metadata.StackTraces, stack)

		for _, child := range children {
			walk(child, index)
		}
	}

	if err != nil {
		walk(err, -1)
	}

	return metadata
}

func stackTraceOf(err error) string {
	tracer, ok := err.(stackTracer)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%+v", tracer.StackTrace()))
}

// ownMessage strips the messages of the wrapped errors from the message of err.
func ownMessage(err error, children []error) string {
	message := err.Error()

	switch len(children) {
	case 0:
		return message
	case 1:
		return strings.TrimSuffix(message, ": "+children[0].Error())
	default:
		var childMessages []string
		for _, child := range children {
			childMessages = append(childMessages, child.Error())
		}
		if message == strings.Join(childMessages, "\n") {
			return ""
		}
		return message
	}
}
