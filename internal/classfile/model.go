// Package classfile describes compiled classes: the descriptor model, a JVM
// class-file reader, generic signature parsing and the class indexes the
// loader consults.
package classfile

// Class is the structured descriptor of one compiled class. Names use the
// internal binary form with '/' separators and '$' for nested classes.
type Class struct {
	Name         string       `msgpack:"name"`
	Access       uint16       `msgpack:"access"`
	Super        string       `msgpack:"super,omitempty"`
	Interfaces   []string     `msgpack:"ifaces,omitempty"`
	Signature    string       `msgpack:"sig,omitempty"`
	Fields       []Field      `msgpack:"fields,omitempty"`
	Methods      []Method     `msgpack:"methods,omitempty"`
	InnerClasses []InnerClass `msgpack:"inner,omitempty"`
	Annotations  []Annotation `msgpack:"annos,omitempty"`
	Deprecated   bool         `msgpack:"depr,omitempty"`
	SourceFile   string       `msgpack:"src,omitempty"`
}

type Field struct {
	Access      uint16       `msgpack:"access"`
	Name        string       `msgpack:"name"`
	Descriptor  string       `msgpack:"desc"`
	Signature   string       `msgpack:"sig,omitempty"`
	Annotations []Annotation `msgpack:"annos,omitempty"`
	Deprecated  bool         `msgpack:"depr,omitempty"`
}

type Method struct {
	Access      uint16        `msgpack:"access"`
	Name        string        `msgpack:"name"`
	Descriptor  string        `msgpack:"desc"`
	Signature   string        `msgpack:"sig,omitempty"`
	Exceptions  []string      `msgpack:"exc,omitempty"`
	Annotations []Annotation  `msgpack:"annos,omitempty"`
	ParamNames  []string      `msgpack:"params,omitempty"`
	Default     *ElementValue `msgpack:"default,omitempty"`
	Deprecated  bool          `msgpack:"depr,omitempty"`
}

// InnerClass is one InnerClasses attribute entry. Outer and Simple are empty
// for local and anonymous classes.
type InnerClass struct {
	Inner  string `msgpack:"inner"`
	Outer  string `msgpack:"outer,omitempty"`
	Simple string `msgpack:"simple,omitempty"`
	Access uint16 `msgpack:"access"`
}

// Annotation is a RuntimeVisible/Invisible annotation instance.
type Annotation struct {
	Type     string        `msgpack:"type"` // field descriptor, e.g. Ljava/lang/Deprecated;
	Visible  bool          `msgpack:"visible"`
	Elements []ElementPair `msgpack:"elems,omitempty"`
}

type ElementPair struct {
	Name  string       `msgpack:"name"`
	Value ElementValue `msgpack:"value"`
}

// ElementValue tags follow the class-file format: B C D F I J S Z s e c @ [.
type ElementValue struct {
	Tag        byte           `msgpack:"tag"`
	Int        int64          `msgpack:"i,omitempty"`
	Float      float64        `msgpack:"f,omitempty"`
	String     string         `msgpack:"s,omitempty"`
	EnumType   string         `msgpack:"et,omitempty"`
	EnumConst  string         `msgpack:"ec,omitempty"`
	Class      string         `msgpack:"c,omitempty"`
	Annotation *Annotation    `msgpack:"a,omitempty"`
	Array      []ElementValue `msgpack:"arr,omitempty"`
}

// TypeName returns the annotation type as a dotted name.
func (a Annotation) TypeName() string {
	return DescriptorToName(a.Type)
}

// Method looks up a method by name and descriptor.
func (c *Class) Method(name, desc string) *Method {
	for i := range c.Methods {
		if c.Methods[i].Name == name && (desc == "" || c.Methods[i].Descriptor == desc) {
			return &c.Methods[i]
		}
	}
	return nil
}

func (c *Class) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// DescriptorToName turns Ljava/lang/String; into java.lang.String; other
// descriptors are returned unchanged.
func DescriptorToName(desc string) string {
	if len(desc) > 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		return InternalToDotted(desc[1 : len(desc)-1])
	}
	return desc
}

// InternalToDotted converts java/util/Map$Entry into java.util.Map$Entry.
func InternalToDotted(name string) string {
	b := []byte(name)
	for i := range b {
		if b[i] == '/' {
			b[i] = '.'
		}
	}
	return string(b)
}

// DottedToInternal is the inverse of InternalToDotted.
func DottedToInternal(name string) string {
	b := []byte(name)
	for i := range b {
		if b[i] == '.' {
			b[i] = '/'
		}
	}
	return string(b)
}
