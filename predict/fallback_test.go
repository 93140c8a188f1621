package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v int, err error, calls *int) Func[string, int] {
	return func(ctx context.Context, in string) (int, error) {
		*calls++
		return v, err
	}
}

func TestPolicyPrimarySucceeds(t *testing.T) {
	var primaryCalls, fallbackCalls int
	p := Policy[string, int]{
		Name:     "test",
		Primary:  constant(1, nil, &primaryCalls),
		Fallback: constant(2, nil, &fallbackCalls),
	}

	res, err := p.Run(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value)
	assert.Equal(t, SourceRemote, res.Source)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, primaryCalls)
	assert.Zero(t, fallbackCalls)
}

func TestPolicyFallbackRunsOnceOnFailure(t *testing.T) {
	var primaryCalls, fallbackCalls int
	boom := errors.New("boom")
	p := Policy[string, int]{
		Name:     "test",
		Primary:  constant(0, boom, &primaryCalls),
		Fallback: constant(2, nil, &fallbackCalls),
	}

	res, err := p.Run(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, SourceHeuristic, res.Source)
	assert.True(t, res.Degraded)
	assert.ErrorIs(t, res.Cause, boom)
	assert.Equal(t, 1, primaryCalls)
	assert.Equal(t, 1, fallbackCalls)
}

func TestPolicyBothFail(t *testing.T) {
	var calls int
	p := Policy[string, int]{
		Name:     "test",
		Primary:  constant(0, errors.New("primary"), &calls),
		Fallback: constant(0, errors.New("fallback"), &calls),
	}

	_, err := p.Run(context.Background(), "in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
	assert.Equal(t, 2, calls)
}

func TestPolicyCancelledSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var fallbackCalls int
	p := Policy[string, int]{
		Primary: func(ctx context.Context, in string) (int, error) {
			cancel()
			return 0, ctx.Err()
		},
		Fallback: constant(2, nil, &fallbackCalls),
	}

	_, err := p.Run(ctx, "in")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallbackCalls)
}

func TestPolicyWithoutPrimaryIsNotDegraded(t *testing.T) {
	var calls int
	p := Policy[string, int]{Fallback: constant(7, nil, &calls)}

	res, err := p.Run(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Value)
	assert.Equal(t, SourceHeuristic, res.Source)
	assert.False(t, res.Degraded)
}

func TestPolicyWithoutStrategies(t *testing.T) {
	_, err := Policy[string, int]{Name: "empty"}.Run(context.Background(), "in")
	assert.Error(t, err)
}
