package movieref

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUUID = "6f1c2a4e-0d7b-4c55-9d1e-0f2a3b4c5d6e"

func TestIsUUID(t *testing.T) {
	cases := map[string]bool{
		testUUID:                                 true,
		"6F1C2A4E-0D7B-4C55-9D1E-0F2A3B4C5D6E":   true,
		"6f1c2a4e0d7b4c559d1e0f2a3b4c5d6e":       false,
		"{6f1c2a4e-0d7b-4c55-9d1e-0f2a3b4c5d6e}": false,
		"urn:uuid:6f1c2a4e-0d7b-4c55-9d1e-0f2a3b4c5d6e": false,
		"6f1c2a4e-0d7b-4c55-9d1e-0f2a3b4c5d6z":   false,
		"27205":                                  false,
		"":                                       false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsUUID(in), in)
	}
}

func TestResolve(t *testing.T) {
	t.Run("uuid wins over numeric id", func(t *testing.T) {
		ref, err := Resolve(Candidates{ID: testUUID}, "27205")
		require.NoError(t, err)
		assert.Equal(t, KindInternal, ref.Kind())
		assert.Equal(t, testUUID, ref.String())
	})
	t.Run("priority order", func(t *testing.T) {
		other := "11111111-2222-4333-8444-555555555555"
		ref, err := Resolve(Candidates{InternalRef: "not-a-uuid", AltInternalRef: other, ID: testUUID}, "1")
		require.NoError(t, err)
		id, ok := ref.Internal()
		assert.True(t, ok)
		assert.Equal(t, other, id)
	})
	t.Run("movie_id scanned after peliculaId", func(t *testing.T) {
		ref, err := Resolve(Candidates{AltInternalRef: "legacy-7", MovieIDRef: testUUID}, "1")
		require.NoError(t, err)
		assert.Equal(t, Internal(testUUID), ref)
	})
	t.Run("no uuid falls back to external id", func(t *testing.T) {
		ref, err := Resolve(Candidates{InternalRef: "42", ID: "27205"}, "27205")
		require.NoError(t, err)
		n, ok := ref.External()
		assert.True(t, ok)
		assert.EqualValues(t, 27205, n)
		assert.Equal(t, map[string]any{FieldExternal: int64(27205)}, ref.Fields())
	})
	t.Run("nothing usable", func(t *testing.T) {
		_, err := Resolve(Candidates{}, "abc")
		assert.ErrorIs(t, err, ErrUnresolvable)
	})
}

func TestResolverFallsBackOnLookupError(t *testing.T) {
	r := NewResolver(func(ctx context.Context, routeID string) (Candidates, error) {
		return Candidates{}, errors.New("connection refused")
	})
	ref, err := r.Resolve(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, External(603), ref)
}

func TestResolverUsesLookup(t *testing.T) {
	r := NewResolver(func(ctx context.Context, routeID string) (Candidates, error) {
		return Candidates{InternalRef: testUUID}, nil
	})
	ref, err := r.Resolve(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, Internal(testUUID), ref)
	assert.Equal(t, map[string]any{FieldInternal: testUUID}, ref.Fields())
}

func TestParse(t *testing.T) {
	ref, err := Parse(testUUID)
	require.NoError(t, err)
	assert.Equal(t, KindInternal, ref.Kind())

	ref, err = Parse("550")
	require.NoError(t, err)
	assert.Equal(t, "550", ref.String())

	assert.True(t, Ref{}.IsZero())
	assert.Equal(t, "none", Ref{}.Kind().String())
}
