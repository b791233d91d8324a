package directive

import (
	"errors"
	"fmt"
	"strings"
)

// Wire grammar. The directive may be embedded anywhere inside a larger
// payload; all surrounding bytes are ignored.
const (
	openMarker  = "ACT["
	closeMarker = "]"
	actionSep   = ","
	paramSep    = "="
)

// ErrNoDirective is returned by Parse when the input carries no
// recognizable opening+closing marker pair.
var ErrNoDirective = errors.New("no directive found")

// Extract scans payload for a directive and returns the ordered action
// list. The second return value is false when no directive is present,
// which is distinct from an empty directive ("ACT[]" is a valid
// do-nothing).
//
// The body is the text between the first "ACT[" and the first "]"
// after it. There is no escaping: a "]" inside a parameter terminates
// the directive early. Client suites rely on this exact boundary, so
// it must not be tightened.
//
// Extract is a pure function: no I/O, no state, never an error.
func Extract(payload []byte) (Directive, bool) {
	text := string(payload)

	start := strings.Index(text, openMarker)
	if start < 0 {
		return nil, false
	}
	rest := text[start+len(openMarker):]
	end := strings.Index(rest, closeMarker)
	if end < 0 {
		return nil, false
	}

	body := rest[:end]
	actions := Directive{}
	if body == "" {
		return actions, true
	}

	for _, token := range strings.Split(body, actionSep) {
		kindToken := token
		action := Action{}
		if i := strings.Index(token, paramSep); i >= 0 {
			kindToken = token[:i]
			action.Param = token[i+1:]
			action.HasParam = true
		}
		action.Raw = kindToken
		action.Kind = ParseKind(kindToken)
		actions = append(actions, action)
	}
	return actions, true
}

// Parse extracts and validates a directive from a configuration
// string. Unlike Extract it fails loudly: it is used for the global
// directive, where a typo must abort startup with a descriptive
// message instead of surfacing on the first connection.
func Parse(s string) (Directive, error) {
	actions, ok := Extract([]byte(s))
	if !ok {
		return nil, fmt.Errorf("%w in %q (expected ACT[...])", ErrNoDirective, s)
	}
	for _, action := range actions {
		if err := action.Validate(); err != nil {
			return nil, fmt.Errorf("invalid directive %q: %w", s, err)
		}
	}
	return actions, nil
}
