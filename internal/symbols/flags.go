package symbols

import "strings"

// Flags is the modifier bitset of a symbol.
type Flags uint32

const (
	FlagPublic Flags = 1 << iota
	FlagPrivate
	FlagProtected
	FlagStatic
	FlagFinal
	FlagSynchronized
	FlagVolatile
	FlagTransient
	FlagNative
	FlagInterface
	FlagAbstract
	FlagStrict
	FlagSynthetic
	FlagAnnotation
	FlagEnum
	FlagVarargs
	FlagDeprecated
	FlagDefault
	FlagRecord
	FlagBridge
	FlagSealed
	FlagNonSealed
	FlagParameter
	FlagLocal
	FlagAnonymous
)

// AccessMask selects the visibility bits.
const AccessMask = FlagPublic | FlagPrivate | FlagProtected

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagPublic, "public"},
	{FlagPrivate, "private"},
	{FlagProtected, "protected"},
	{FlagStatic, "static"},
	{FlagFinal, "final"},
	{FlagSynchronized, "synchronized"},
	{FlagVolatile, "volatile"},
	{FlagTransient, "transient"},
	{FlagNative, "native"},
	{FlagInterface, "interface"},
	{FlagAbstract, "abstract"},
	{FlagStrict, "strictfp"},
	{FlagSynthetic, "synthetic"},
	{FlagAnnotation, "annotation"},
	{FlagEnum, "enum"},
	{FlagVarargs, "varargs"},
	{FlagDeprecated, "deprecated"},
	{FlagDefault, "default"},
	{FlagRecord, "record"},
	{FlagBridge, "bridge"},
	{FlagSealed, "sealed"},
	{FlagNonSealed, "non-sealed"},
	{FlagParameter, "parameter"},
	{FlagLocal, "local"},
	{FlagAnonymous, "anonymous"},
}

func (f Flags) Has(mask Flags) bool { return f&mask == mask }

func (f Flags) IsPublic() bool     { return f&FlagPublic != 0 }
func (f Flags) IsPrivate() bool    { return f&FlagPrivate != 0 }
func (f Flags) IsProtected() bool  { return f&FlagProtected != 0 }
func (f Flags) IsStatic() bool     { return f&FlagStatic != 0 }
func (f Flags) IsFinal() bool      { return f&FlagFinal != 0 }
func (f Flags) IsAbstract() bool   { return f&FlagAbstract != 0 }
func (f Flags) IsInterface() bool  { return f&FlagInterface != 0 }
func (f Flags) IsEnum() bool       { return f&FlagEnum != 0 }
func (f Flags) IsAnnotation() bool { return f&FlagAnnotation != 0 }
func (f Flags) IsVarargs() bool    { return f&FlagVarargs != 0 }
func (f Flags) IsDeprecated() bool { return f&FlagDeprecated != 0 }
func (f Flags) IsSynthetic() bool  { return f&FlagSynthetic != 0 }
func (f Flags) IsDefault() bool    { return f&FlagDefault != 0 }
func (f Flags) IsRecord() bool     { return f&FlagRecord != 0 }

// IsPackagePrivate reports the absence of any access modifier.
func (f Flags) IsPackagePrivate() bool { return f&AccessMask == 0 }

// Strings returns a slice of textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			labels = append(labels, fn.name)
		}
	}
	return labels
}

func (f Flags) String() string {
	return strings.Join(f.Strings(), " ")
}
