package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindFatal is emitted when a unit is aborted; it is written at every
	// level except LevelOff.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeRun   Scope = iota + 1 // one driver invocation
	ScopePass                   // parse, declare, hierarchy, resolve
	ScopeUnit                   // one compilation unit inside a pass
	ScopeClass                  // completion of one class symbol
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeClass:
		return "class"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Detail   string
	Extra    map[string]string
}

func passes(level Level, ev *Event) bool {
	if ev.Kind == KindFatal {
		return level > LevelOff
	}
	return level.ShouldEmit(ev.Scope)
}
