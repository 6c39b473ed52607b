package diagfmt

import (
	"encoding/json"
	"io"

	"jsema/internal/sema"
	"jsema/internal/symbols"
)

// SemanticsInput carries the data required to build a semantic dump of
// one analysed unit.
type SemanticsInput struct {
	Table  *symbols.Table
	Result *sema.Result
	// Path overrides the unit path in the output.
	Path string
}

// SemanticsOutput represents semantic data emitted alongside diagnostics.
type SemanticsOutput struct {
	File       string          `json:"file"`
	State      string          `json:"state"`
	Symbols    []SymbolJSON    `json:"symbols"`
	References []ReferenceJSON `json:"references"`
}

type SymbolJSON struct {
	ID        uint32   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Owner     string   `json:"owner,omitempty"`
	Type      string   `json:"type,omitempty"`
	Signature string   `json:"signature,omitempty"`
	Line      uint32   `json:"line"`
	Col       uint32   `json:"col"`
	Flags     []string `json:"flags,omitempty"`
	Usages    int      `json:"usages"`
}

type ReferenceJSON struct {
	Line     uint32 `json:"line"`
	Col      uint32 `json:"col"`
	EndLine  uint32 `json:"end_line"`
	EndCol   uint32 `json:"end_col"`
	SymbolID uint32 `json:"symbol_id"`
	Name     string `json:"name"`
}

// BuildSemanticsOutput collects the declared symbols and resolved
// references of a unit.
func BuildSemanticsOutput(in *SemanticsInput) (*SemanticsOutput, error) {
	if in == nil || in.Result == nil || in.Table == nil {
		return nil, nil
	}
	t := in.Table
	u := in.Result.Unit()
	output := &SemanticsOutput{File: in.Path, State: u.State.String()}
	if output.File == "" && u.File != nil {
		output.File = u.File.Path
	}

	declared := in.Result.DeclaredSymbols()
	output.Symbols = make([]SymbolJSON, 0, len(declared))
	for _, id := range declared {
		sym := t.MustSym(id)
		entry := SymbolJSON{
			ID:     uint32(id),
			Name:   sym.Name,
			Kind:   sym.Kind.String(),
			Flags:  sym.Flags.Strings(),
			Usages: len(t.Usages(id)),
		}
		if sym.Owner.IsValid() {
			entry.Owner = ownerName(t, sym.Owner)
		}
		switch sym.Kind {
		case symbols.SymMethod:
			entry.Signature = t.Signature(id)
			entry.Type = t.TypeString(sym.Method.Result)
		case symbols.SymType:
			entry.Type = t.FullyQualifiedName(id)
		default:
			entry.Type = t.TypeString(sym.Type)
		}
		if u.File != nil && sym.Span.File == u.File.ID {
			pos := u.File.Position(sym.Span.Start)
			entry.Line, entry.Col = pos.Line, pos.Col
		}
		output.Symbols = append(output.Symbols, entry)
	}

	refs := in.Result.References()
	output.References = make([]ReferenceJSON, 0, len(refs))
	for _, ref := range refs {
		if u.File == nil || ref.Span.File != u.File.ID {
			continue
		}
		start, end := u.File.Position(ref.Span.Start), u.File.Position(ref.Span.End)
		output.References = append(output.References, ReferenceJSON{
			Line:     start.Line,
			Col:      start.Col,
			EndLine:  end.Line,
			EndCol:   end.Col,
			SymbolID: uint32(ref.Sym),
			Name:     t.MustSym(ref.Sym).Name,
		})
	}
	return output, nil
}

func ownerName(t *symbols.Table, owner symbols.SymbolID) string {
	s := t.MustSym(owner)
	switch s.Kind {
	case symbols.SymType:
		return t.FullyQualifiedName(owner)
	case symbols.SymMethod:
		return t.FullyQualifiedName(s.Owner) + "." + t.Signature(owner)
	}
	return s.Name
}

// SemanticsJSON writes the dumps of several units as one JSON array.
func SemanticsJSON(w io.Writer, inputs []*SemanticsInput) error {
	out := make([]*SemanticsOutput, 0, len(inputs))
	for _, in := range inputs {
		o, err := BuildSemanticsOutput(in)
		if err != nil {
			return err
		}
		if o != nil {
			out = append(out, o)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
