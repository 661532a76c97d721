package runtime

import "fmt"

// ---------------------------------------------------------------------------
// Control signals: the out-of-band result of statement execution
// ---------------------------------------------------------------------------

// SignalKind enumerates the control signals a statement can produce.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalBreak
	SignalContinue
	SignalReturn
)

func (k SignalKind) String() string {
	switch k {
	case SignalNone:
		return "none"
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	case SignalReturn:
		return "return"
	}
	return fmt.Sprintf("SignalKind(%d)", int(k))
}

// Signal is produced by statement execution and consumed by the nearest
// enclosing construct that understands it: loops consume Break/Continue,
// function-call boundaries consume Return. Everything else propagates a
// signal unchanged.
type Signal struct {
	Kind  SignalKind
	Value Value // carried value for Return; nil otherwise
}

// NoSignal is the quiescent signal.
var NoSignal = Signal{}

// Return builds a Return signal carrying v.
func Return(v Value) Signal {
	return Signal{Kind: SignalReturn, Value: v}
}

// IsNone reports whether execution completed without a control transfer.
func (s Signal) IsNone() bool {
	return s.Kind == SignalNone
}
