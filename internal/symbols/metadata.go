package symbols

// AnnotationValue is one element of an annotation instance. Value holds
// int64, float64, bool, string, EnumConstant, ClassLiteral, *Annotation or
// []AnnotationValue (element names are empty inside arrays).
type AnnotationValue struct {
	Name  string
	Value any
}

type EnumConstant struct {
	Type  string // fully qualified
	Const string
}

type ClassLiteral struct {
	Type string // fully qualified, or a primitive keyword
}

// Annotation is a captured annotation instance.
type Annotation struct {
	Type    string // fully qualified name
	Visible bool
	Values  []AnnotationValue
}

// Metadata is the list of annotations attached to a symbol.
type Metadata []Annotation

// IsAnnotatedWith reports whether an annotation of the given type is present.
func (m Metadata) IsAnnotatedWith(fqn string) bool {
	for i := range m {
		if m[i].Type == fqn {
			return true
		}
	}
	return false
}

// ValuesFor returns the values of the first annotation of type fqn; ok is
// false when the annotation is absent.
func (m Metadata) ValuesFor(fqn string) ([]AnnotationValue, bool) {
	for i := range m {
		if m[i].Type == fqn {
			return m[i].Values, true
		}
	}
	return nil, false
}

// Value returns one named element of the annotation of type fqn.
func (m Metadata) Value(fqn, name string) (any, bool) {
	vals, ok := m.ValuesFor(fqn)
	if !ok {
		return nil, false
	}
	for _, v := range vals {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}
