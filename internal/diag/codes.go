package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Parser adapter
	SynInfo            Code = 2000
	SynError           Code = 2001
	SynMissing         Code = 2002
	SynUnsupportedNode Code = 2003

	// Resolution
	ResInfo              Code = 3000
	ResUnknownType       Code = 3001
	ResUnknownSymbol     Code = 3002
	ResUnknownMethod     Code = 3003
	ResAmbiguousMethod   Code = 3004
	ResDuplicateSymbol   Code = 3005
	ResCyclicHierarchy   Code = 3006
	ResNotAccessible     Code = 3007
	ResUnknownImport     Code = 3008
	ResWrongTypeArgCount Code = 3009

	// Class loading / completion
	LoadInfo               Code = 4000
	LoadClassNotFound      Code = 4001
	LoadClassFormat        Code = 4002
	LoadBadSignature       Code = 4003
	LoadBridgeNotSynthetic Code = 4004
	LoadRetry              Code = 4005

	// I/O and project
	IOLoadFileError  Code = 5001
	ProjInfo         Code = 6000
	ProjBadManifest  Code = 6001
	ProjBadClasspath Code = 6002

	// Observability
	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	SynInfo:                "Syntax information",
	SynError:               "Syntax error",
	SynMissing:             "Missing syntax element",
	SynUnsupportedNode:     "Unsupported syntax",
	ResInfo:                "Resolution information",
	ResUnknownType:         "Cannot resolve type",
	ResUnknownSymbol:       "Cannot resolve symbol",
	ResUnknownMethod:       "Cannot resolve method",
	ResAmbiguousMethod:     "Ambiguous method call",
	ResDuplicateSymbol:     "Duplicate declaration",
	ResCyclicHierarchy:     "Cyclic class hierarchy",
	ResNotAccessible:       "Symbol is not accessible",
	ResUnknownImport:       "Cannot resolve import",
	ResWrongTypeArgCount:   "Wrong number of type arguments",
	LoadInfo:               "Class loading information",
	LoadClassNotFound:      "Class not found on classpath",
	LoadClassFormat:        "Malformed class file",
	LoadBadSignature:       "Malformed generic signature",
	LoadBridgeNotSynthetic: "Bridge method not marked synthetic",
	LoadRetry:              "Class load retried",
	IOLoadFileError:        "I/O load file error",
	ProjInfo:               "Project information",
	ProjBadManifest:        "Invalid project manifest",
	ProjBadClasspath:       "Invalid classpath entry",
	ObsInfo:                "Observability information",
	ObsTimings:             "Pipeline timings",
}

// ID returns the stable textual identifier of the code, e.g. RES3004.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LOAD%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Title returns the short human description of the code.
func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}
