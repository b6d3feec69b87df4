package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type profile struct {
	Name string
	Age  int
}

func TestApplyKeepsCandidateOnSuccess(t *testing.T) {
	state := profile{Name: "Ana", Age: 30}
	var seen []profile

	err := Apply(context.Background(), Update[profile]{
		Prior:     state,
		Candidate: profile{Name: "Ana María", Age: 31},
		Set: func(p profile) {
			state = p
			seen = append(seen, p)
		},
		Commit: func(ctx context.Context) error {
			assert.Equal(t, "Ana María", state.Name)
			return nil
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, profile{Name: "Ana María", Age: 31}, state)
	assert.Len(t, seen, 1)
}

func TestApplyRevertsVerbatimOnFailure(t *testing.T) {
	prior := profile{Name: "Ana", Age: 30}
	state := prior
	boom := errors.New("boom")

	err := Apply(context.Background(), Update[profile]{
		Prior:     prior,
		Candidate: profile{Name: "Otra", Age: 99},
		Set:       func(p profile) { state = p },
		Commit:    func(ctx context.Context) error { return boom },
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, prior, state)
}
