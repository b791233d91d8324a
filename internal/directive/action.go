package directive

import (
	"fmt"
	"net/url"
	"strconv"
)

// Kind identifies one of the socket operations a directive may request.
// The set is closed: anything else parses to KindInvalid and aborts
// execution, it is never silently skipped.
type Kind int

const (
	KindInvalid Kind = iota
	KindClose        // end the outbound side of the stream
	KindData         // write N bytes of random data
	KindSend         // write a percent-decoded literal
	KindWait         // sleep N milliseconds
	KindShut         // stop the listener from accepting new connections
)

// ParseKind maps a kind token to its Kind. Matching is exact: no
// trimming, no case folding.
func ParseKind(s string) Kind {
	switch s {
	case "CLOSE":
		return KindClose
	case "DATA":
		return KindData
	case "SEND":
		return KindSend
	case "WAIT":
		return KindWait
	case "SHUT":
		return KindShut
	default:
		return KindInvalid
	}
}

func (k Kind) String() string {
	switch k {
	case KindClose:
		return "CLOSE"
	case KindData:
		return "DATA"
	case KindSend:
		return "SEND"
	case KindWait:
		return "WAIT"
	case KindShut:
		return "SHUT"
	default:
		return "INVALID"
	}
}

// Action is one unit of work to apply to a connection.
type Action struct {
	Kind Kind
	// Raw is the kind token as it appeared in the payload, kept for
	// error reporting when Kind is KindInvalid.
	Raw string
	// Param is the text after the first '='. HasParam distinguishes an
	// absent parameter from an empty one ("WAIT" vs "WAIT=").
	Param    string
	HasParam bool
}

// Directive is the ordered action list extracted from one payload.
type Directive []Action

// IntParam interprets the action's parameter as a non-negative base-10
// integer. Negative, fractional or non-numeric input is rejected
// rather than coerced.
func (a Action) IntParam() (int, error) {
	if !a.HasParam {
		return 0, fmt.Errorf("%s requires a numeric parameter", a.Kind)
	}
	n, err := strconv.Atoi(a.Param)
	if err != nil {
		return 0, fmt.Errorf("%s parameter %q is not a valid number", a.Kind, a.Param)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s parameter must not be negative, got %d", a.Kind, n)
	}
	return n, nil
}

// TextParam percent-decodes the action's parameter (%XX -> byte). An
// absent parameter decodes to the empty string.
func (a Action) TextParam() (string, error) {
	if !a.HasParam {
		return "", nil
	}
	text, err := url.PathUnescape(a.Param)
	if err != nil {
		return "", fmt.Errorf("%s parameter %q is not valid percent-encoding: %w", a.Kind, a.Param, err)
	}
	return text, nil
}

// Validate checks what can be checked without a connection: the kind
// is known and its parameter is well formed. Used for the global
// directive so that startup fails before any socket is opened.
func (a Action) Validate() error {
	switch a.Kind {
	case KindData, KindWait:
		_, err := a.IntParam()
		return err
	case KindSend:
		_, err := a.TextParam()
		return err
	case KindClose, KindShut:
		return nil
	default:
		return fmt.Errorf("unknown action %q", a.Raw)
	}
}
