// Package lub computes least upper bounds of types, as needed for
// conditional expressions, inference of repeated bindings and array
// initialisers.
package lub

import (
	"errors"
	"fmt"
	"sort"

	"jsema/internal/symbols"
)

// ErrInvalidArgument is wrapped by the panic for an empty input set.
var ErrInvalidArgument = errors.New("invalid argument")

// maxDistance bounds the recursion into type arguments; beyond it the
// argument becomes an unbounded wildcard.
const maxDistance = 4

// Solver memoises erased supertype closures per type. It shares the
// table's single-goroutine contract.
type Solver struct {
	t        *symbols.Table
	closures map[symbols.TypeID][]symbols.TypeID
}

func New(t *symbols.Table) *Solver {
	return &Solver{t: t, closures: make(map[symbols.TypeID][]symbols.TypeID, 64)}
}

// LeastUpperBound returns the most specific common supertype of ts. There
// are no intersection types: when several minimal candidates remain, a
// class wins over an interface, then the alphabetically first simple name.
// ts must not be empty.
func (s *Solver) LeastUpperBound(ts []symbols.TypeID) symbols.TypeID {
	if len(ts) == 0 {
		panic(fmt.Errorf("least upper bound of an empty set: %w", ErrInvalidArgument))
	}
	return s.lub(ts, 0)
}

func (s *Solver) lub(ts []symbols.TypeID, distance int) symbols.TypeID {
	t := s.t
	if len(ts) == 1 {
		return ts[0]
	}
	unknown := t.UnknownType()
	var refs []symbols.TypeID
	for _, id := range ts {
		ty, ok := t.Type(id)
		if !ok || ty.IsUnknown() {
			return unknown
		}
		if !ty.IsNull() {
			refs = appendUnique(refs, id)
		}
	}
	prims := 0
	for _, id := range refs {
		if t.Kind(id).IsPrimitive() {
			prims++
		}
	}
	switch {
	case len(refs) == 0:
		return t.Builtins().Null
	case len(refs) == 1:
		return refs[0]
	case prims == len(refs):
		// distinct primitives have no common type
		return unknown
	}
	for i, id := range refs {
		if t.Kind(id).IsPrimitive() {
			refs[i] = t.Box(id)
		}
	}
	refs = dedup(refs)
	if len(refs) == 1 {
		return refs[0]
	}

	if elems, ok := s.referenceArrayElems(refs); ok {
		return t.ArrayOf(s.lub(elems, distance))
	}

	best := s.bestCandidate(refs)
	if !best.IsValid() {
		return t.ObjectType()
	}
	return s.parameterize(best, refs, distance)
}

// referenceArrayElems returns the element types when every input is an
// array of references.
func (s *Solver) referenceArrayElems(ts []symbols.TypeID) ([]symbols.TypeID, bool) {
	elems := make([]symbols.TypeID, len(ts))
	for i, id := range ts {
		ty := s.t.MustType(id)
		if ty.Kind != symbols.TyArray || !s.t.Kind(ty.Elem).IsReference() {
			return nil, false
		}
		elems[i] = ty.Elem
	}
	return elems, true
}

// erasedSupertypes is the memoised erased closure of id.
func (s *Solver) erasedSupertypes(id symbols.TypeID) []symbols.TypeID {
	if c, ok := s.closures[id]; ok {
		return c
	}
	var out []symbols.TypeID
	for _, sup := range s.t.Supertypes(id) {
		out = appendUnique(out, s.t.Erasure(sup))
	}
	s.closures[id] = out
	return out
}

func (s *Solver) bestCandidate(ts []symbols.TypeID) symbols.TypeID {
	t := s.t
	common := s.erasedSupertypes(ts[0])
	for _, other := range ts[1:] {
		set := make(map[symbols.TypeID]struct{})
		for _, sup := range s.erasedSupertypes(other) {
			set[sup] = struct{}{}
		}
		var keep []symbols.TypeID
		for _, c := range common {
			if _, ok := set[c]; ok {
				keep = append(keep, c)
			}
		}
		common = keep
	}
	var minimal []symbols.TypeID
	for _, c := range common {
		dominated := false
		for _, d := range common {
			if d != c && t.IsSubtype(d, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			minimal = append(minimal, c)
		}
	}
	if len(minimal) == 0 {
		return symbols.NoTypeID
	}
	sort.SliceStable(minimal, func(i, j int) bool {
		ii, ij := s.isInterface(minimal[i]), s.isInterface(minimal[j])
		if ii != ij {
			return !ii
		}
		return s.simpleName(minimal[i]) < s.simpleName(minimal[j])
	})
	return minimal[0]
}

func (s *Solver) isInterface(id symbols.TypeID) bool {
	ty := s.t.MustType(id)
	return ty.Kind == symbols.TyClass && s.t.Flags(ty.Sym).IsInterface()
}

func (s *Solver) simpleName(id symbols.TypeID) string {
	ty := s.t.MustType(id)
	if ty.Kind == symbols.TyClass {
		return s.t.MustSym(ty.Sym).Name
	}
	return s.t.TypeString(id)
}

// parameterize turns the erased best candidate back into a generic type:
// raw when an input reaches it raw, otherwise per-slot arguments.
func (s *Solver) parameterize(best symbols.TypeID, ts []symbols.TypeID, distance int) symbols.TypeID {
	t := s.t
	ty := t.MustType(best)
	if ty.Kind != symbols.TyClass {
		return best
	}
	params := t.TypeParams(ty.Sym)
	if len(params) == 0 {
		return best
	}
	slots := make([][]symbols.TypeID, len(params))
	for _, in := range ts {
		as := t.AsSuper(in, ty.Sym)
		if !as.IsValid() || t.Kind(as) != symbols.TyParameterized {
			return best
		}
		for i, a := range t.TypeArgs(as) {
			slots[i] = append(slots[i], a)
		}
	}
	args := make([]symbols.TypeID, len(params))
	for i, slot := range slots {
		if same(slot) {
			args[i] = slot[0]
			continue
		}
		if distance >= maxDistance {
			args[i] = t.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID)
			continue
		}
		uppers := make([]symbols.TypeID, len(slot))
		for j, a := range slot {
			uppers[j] = s.upperBound(a)
		}
		inner := s.lub(uppers, distance+1)
		if t.IsUnknown(inner) {
			args[i] = t.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID)
			continue
		}
		args[i] = t.Wildcard(symbols.BoundExtends, inner)
	}
	return t.Parameterize(ty.Sym, args)
}

// upperBound reads a wildcard argument as its extends bound (Object for
// the others).
func (s *Solver) upperBound(arg symbols.TypeID) symbols.TypeID {
	ty := s.t.MustType(arg)
	if ty.Kind != symbols.TyWildcard {
		return arg
	}
	if ty.Bound == symbols.BoundExtends {
		return ty.Elem
	}
	return s.t.ObjectType()
}

func same(ts []symbols.TypeID) bool {
	for _, id := range ts[1:] {
		if id != ts[0] {
			return false
		}
	}
	return true
}

func appendUnique(ts []symbols.TypeID, id symbols.TypeID) []symbols.TypeID {
	for _, e := range ts {
		if e == id {
			return ts
		}
	}
	return append(ts, id)
}

func dedup(ts []symbols.TypeID) []symbols.TypeID {
	var out []symbols.TypeID
	for _, id := range ts {
		out = appendUnique(out, id)
	}
	return out
}
