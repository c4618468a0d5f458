package capability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customTimeoutError struct{}

func (customTimeoutError) Error() string { return "custom timeout" }

func TestHas(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name          string
		err           error
		wantAssertion bool
		wantTimeout   bool
	}{
		{name: "nil error", err: nil},
		{name: "plain error", err: plain},
		{name: "assertion tag", err: Tag(plain, AssertionFailure), wantAssertion: true},
		{name: "timeout tag", err: Tag(plain, TimeoutFailure), wantTimeout: true},
		{name: "both tags", err: Tag(plain, AssertionFailure, TimeoutFailure), wantAssertion: true, wantTimeout: true},
		{name: "retagged", err: Tag(Tag(plain, AssertionFailure), TimeoutFailure), wantAssertion: true, wantTimeout: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantTimeout: true},
		{name: "wrapped tag is not inspected", err: fmt.Errorf("outer: %w", Tag(plain, AssertionFailure))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAssertion, Has(tt.err, AssertionFailure))
			assert.Equal(t, tt.wantTimeout, Has(tt.err, TimeoutFailure))
		})
	}
}

func TestTag_keepsMessageAndChain(t *testing.T) {
	plain := errors.New("boom")

	tagged := Tag(plain, AssertionFailure)

	require.Error(t, tagged)
	assert.Equal(t, "boom", tagged.Error())
	assert.True(t, errors.Is(tagged, plain))
	assert.Nil(t, Tag(nil, AssertionFailure))
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	registry.Register(TimeoutFailure, func(err error) bool {
		var target customTimeoutError
		return errors.As(err, &target)
	})
	registry.Register(AssertionFailure, nil)

	assert.True(t, registry.Has(customTimeoutError{}, TimeoutFailure))
	assert.False(t, registry.Has(customTimeoutError{}, AssertionFailure))
	assert.False(t, registry.Has(context.DeadlineExceeded, TimeoutFailure))
}

func TestRegistry_Capabilities(t *testing.T) {
	registry := NewRegistry()
	registry.Register(TimeoutFailure, func(err error) bool {
		return err.Error() == "slow"
	})

	err := Tag(errors.New("slow"), AssertionFailure)

	assert.Equal(t, []Capability{AssertionFailure, TimeoutFailure}, registry.Capabilities(err))
	assert.Empty(t, registry.Capabilities(errors.New("fast")))
	assert.Nil(t, registry.Capabilities(nil))
}
