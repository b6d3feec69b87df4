// Package movieref decides how a movie is addressed when talking to the backend:
// by an internal record reference (a UUID) or by its external catalog id.
package movieref

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type Kind int

const (
	KindNone Kind = iota
	KindInternal
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindExternal:
		return "external"
	default:
		return "none"
	}
}

const (
	FieldInternal = "pelicula_id"
	FieldExternal = "tmdb_id"
)

var ErrUnresolvable = errors.New("movie reference could not be resolved")

// Ref is either Internal(uuid) or External(catalog id). The zero value is neither.
type Ref struct {
	kind     Kind
	internal string
	external int64
}

func Internal(id string) Ref {
	return Ref{kind: KindInternal, internal: id}
}

func External(id int64) Ref {
	return Ref{kind: KindExternal, external: id}
}

func (r Ref) Kind() Kind { return r.kind }

func (r Ref) IsZero() bool { return r.kind == KindNone }

func (r Ref) Internal() (string, bool) {
	return r.internal, r.kind == KindInternal
}

func (r Ref) External() (int64, bool) {
	return r.external, r.kind == KindExternal
}

// String is the path-segment form of the reference.
func (r Ref) String() string {
	switch r.kind {
	case KindInternal:
		return r.internal
	case KindExternal:
		return strconv.FormatInt(r.external, 10)
	default:
		return ""
	}
}

// Fields returns the single body field carrying this reference.
func (r Ref) Fields() map[string]any {
	switch r.kind {
	case KindInternal:
		return map[string]any{FieldInternal: r.internal}
	case KindExternal:
		return map[string]any{FieldExternal: r.external}
	default:
		return map[string]any{}
	}
}

// IsUUID reports whether s has the 8-4-4-4-12 hyphenated hexadecimal shape.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Candidates holds the fields that may carry an internal reference, in priority order.
type Candidates struct {
	InternalRef    string
	AltInternalRef string // peliculaId
	MovieIDRef     string // movie_id
	EmbeddedID     string
	ID             string
}

func (c Candidates) ordered() []string {
	return []string{c.InternalRef, c.AltInternalRef, c.MovieIDRef, c.EmbeddedID, c.ID}
}

// Resolve picks the first UUID-shaped candidate; otherwise it falls back to the
// external id taken from routeID.
func Resolve(c Candidates, routeID string) (Ref, error) {
	for _, cand := range c.ordered() {
		if IsUUID(cand) {
			return Internal(cand), nil
		}
	}
	return FromRoute(routeID)
}

// FromRoute parses the numeric external id used as a route parameter.
func FromRoute(routeID string) (Ref, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(routeID), 10, 64)
	if err != nil {
		return Ref{}, ErrUnresolvable
	}
	return External(n), nil
}

// Parse accepts either form: a UUID becomes Internal, a number External.
func Parse(s string) (Ref, error) {
	if IsUUID(s) {
		return Internal(s), nil
	}
	return FromRoute(s)
}

// Lookup fetches the backend representation of a movie and returns its candidates.
type Lookup func(ctx context.Context, routeID string) (Candidates, error)

type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve never fails because of the lookup: a lookup error falls back to the external id.
func (r *Resolver) Resolve(ctx context.Context, routeID string) (Ref, error) {
	if r.lookup == nil {
		return FromRoute(routeID)
	}
	c, err := r.lookup(ctx, routeID)
	if err != nil {
		return FromRoute(routeID)
	}
	return Resolve(c, routeID)
}
