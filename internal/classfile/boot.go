package classfile

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

// The boot stubs describe the slice of the platform library the resolver
// needs without a JDK on the classpath.
//
//go:embed boot.toml
var bootTOML string

type bootFile struct {
	Class []bootClass `toml:"class"`
}

type bootClass struct {
	Name        string       `toml:"name"`
	Flags       []string     `toml:"flags"`
	Super       string       `toml:"super"`
	Interfaces  []string     `toml:"interfaces"`
	Signature   string       `toml:"sig"`
	Deprecated  bool         `toml:"deprecated"`
	Annotations []string     `toml:"annotations"`
	Fields      []bootMember `toml:"fields"`
	Methods     []bootMember `toml:"methods"`
	Inner       []bootInner  `toml:"inner"`
}

type bootMember struct {
	Name       string       `toml:"name"`
	Desc       string       `toml:"desc"`
	Signature  string       `toml:"sig"`
	Flags      []string     `toml:"flags"`
	Throws     []string     `toml:"throws"`
	Params     []string     `toml:"params"`
	Deprecated bool         `toml:"deprecated"`
	Default    *bootElement `toml:"default"`
}

type bootInner struct {
	Inner  string   `toml:"inner"`
	Outer  string   `toml:"outer"`
	Simple string   `toml:"simple"`
	Flags  []string `toml:"flags"`
}

type bootElement struct {
	Tag    string  `toml:"tag"`
	Int    int64   `toml:"i"`
	Float  float64 `toml:"f"`
	String string  `toml:"s"`
}

var (
	bootOnce  sync.Once
	bootIndex *MapIndex
	bootErr   error
)

// Boot returns the index over the embedded platform stubs. The stubs are
// decoded once per process; the returned index must not be mutated.
func Boot() (*MapIndex, error) {
	bootOnce.Do(func() {
		bootIndex, bootErr = DecodeStubs(bootTOML)
	})
	return bootIndex, bootErr
}

// DecodeStubs builds a MapIndex from stub text in the boot.toml format.
// Projects can ship extra stubs with `[classpath] stubs`.
func DecodeStubs(text string) (*MapIndex, error) {
	var file bootFile
	meta, err := toml.Decode(text, &file)
	if err != nil {
		return nil, fmt.Errorf("decode stubs: %w", err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("decode stubs: unknown key %s", undec[0])
	}
	idx := NewMapIndex()
	for i := range file.Class {
		c, err := file.Class[i].toClass()
		if err != nil {
			return nil, err
		}
		idx.Put(c)
	}
	return idx, nil
}

func (bc *bootClass) toClass() (*Class, error) {
	if bc.Name == "" {
		return nil, fmt.Errorf("stub class without name")
	}
	access, ok := ParseAccess(bc.Flags)
	if !ok {
		return nil, fmt.Errorf("stub %s: bad flags %v", bc.Name, bc.Flags)
	}
	c := &Class{
		Name:       bc.Name,
		Access:     access,
		Super:      bc.Super,
		Interfaces: bc.Interfaces,
		Signature:  bc.Signature,
		Deprecated: bc.Deprecated,
	}
	if c.Super == "" && c.Name != "java/lang/Object" {
		c.Super = "java/lang/Object"
	}
	for _, a := range bc.Annotations {
		c.Annotations = append(c.Annotations, Annotation{Type: a, Visible: true})
	}
	if c.Deprecated {
		c.Annotations = append(c.Annotations, Annotation{Type: "Ljava/lang/Deprecated;", Visible: true})
	}
	for _, f := range bc.Fields {
		fa, ok := ParseAccess(f.Flags)
		if !ok {
			return nil, fmt.Errorf("stub %s.%s: bad flags %v", bc.Name, f.Name, f.Flags)
		}
		c.Fields = append(c.Fields, Field{Access: fa, Name: f.Name, Descriptor: f.Desc, Signature: f.Signature, Deprecated: f.Deprecated})
	}
	for _, m := range bc.Methods {
		ma, ok := ParseAccess(m.Flags)
		if !ok {
			return nil, fmt.Errorf("stub %s.%s: bad flags %v", bc.Name, m.Name, m.Flags)
		}
		if _, err := ParseMethodType(m.Desc); err != nil {
			return nil, fmt.Errorf("stub %s.%s: %w", bc.Name, m.Name, err)
		}
		method := Method{
			Access:     ma,
			Name:       m.Name,
			Descriptor: m.Desc,
			Signature:  m.Signature,
			Exceptions: m.Throws,
			ParamNames: m.Params,
			Deprecated: m.Deprecated,
		}
		if m.Default != nil && m.Default.Tag != "" {
			method.Default = &ElementValue{
				Tag:    m.Default.Tag[0],
				Int:    m.Default.Int,
				Float:  m.Default.Float,
				String: m.Default.String,
			}
		}
		c.Methods = append(c.Methods, method)
	}
	for _, in := range bc.Inner {
		ia, ok := ParseAccess(in.Flags)
		if !ok {
			return nil, fmt.Errorf("stub %s: bad inner flags %v", bc.Name, in.Flags)
		}
		c.InnerClasses = append(c.InnerClasses, InnerClass{Inner: in.Inner, Outer: in.Outer, Simple: in.Simple, Access: ia})
	}
	return c, nil
}
