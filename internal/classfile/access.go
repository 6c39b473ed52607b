package classfile

// Access flags as stored in class files.
const (
	AccPublic       uint16 = 0x0001
	AccPrivate      uint16 = 0x0002
	AccProtected    uint16 = 0x0004
	AccStatic       uint16 = 0x0008
	AccFinal        uint16 = 0x0010
	AccSuper        uint16 = 0x0020 // classes
	AccSynchronized uint16 = 0x0020 // methods
	AccVolatile     uint16 = 0x0040 // fields
	AccBridge       uint16 = 0x0040 // methods
	AccTransient    uint16 = 0x0080 // fields
	AccVarargs      uint16 = 0x0080 // methods
	AccNative       uint16 = 0x0100
	AccInterface    uint16 = 0x0200
	AccAbstract     uint16 = 0x0400
	AccStrict       uint16 = 0x0800
	AccSynthetic    uint16 = 0x1000
	AccAnnotation   uint16 = 0x2000
	AccEnum         uint16 = 0x4000
	AccModule       uint16 = 0x8000
)

var accessNames = []struct {
	name string
	flag uint16
}{
	{"public", AccPublic},
	{"private", AccPrivate},
	{"protected", AccProtected},
	{"static", AccStatic},
	{"final", AccFinal},
	{"synchronized", AccSynchronized},
	{"bridge", AccBridge},
	{"varargs", AccVarargs},
	{"native", AccNative},
	{"interface", AccInterface},
	{"abstract", AccAbstract},
	{"strict", AccStrict},
	{"synthetic", AccSynthetic},
	{"annotation", AccAnnotation},
	{"enum", AccEnum},
}

// ParseAccess converts flag names (as used by the boot stubs) to a mask.
func ParseAccess(names []string) (uint16, bool) {
	var out uint16
	for _, n := range names {
		found := false
		for _, an := range accessNames {
			if an.name == n {
				out |= an.flag
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return out, true
}

// AccessString renders flags for `jsema classinfo`. method selects the
// method meaning of overloaded bits.
func AccessString(flags uint16, method bool) []string {
	var out []string
	for _, an := range accessNames {
		if flags&an.flag == 0 {
			continue
		}
		switch an.name {
		case "synchronized", "bridge", "varargs":
			if !method {
				continue
			}
		}
		out = append(out, an.name)
	}
	return out
}
