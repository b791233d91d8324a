package directive

import (
	"reflect"
	"testing"
)

func TestExtract_NoMarkers(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"ACT",
		"ACT[CLOSE",       // opening marker, no closing marker
		"]ACT[",           // closing marker only before the opening one
		"act[close]",      // markers are case-sensitive
		"GET / HTTP/1.1\r\nHost: example.com\r\n\r\n",
	}
	for _, payload := range cases {
		d, ok := Extract([]byte(payload))
		if ok {
			t.Errorf("Extract(%q): expected no directive, got %v", payload, d)
		}
		if d != nil {
			t.Errorf("Extract(%q): expected nil directive on miss, got %v", payload, d)
		}
	}
}

func TestExtract_EmptyDirective(t *testing.T) {
	d, ok := Extract([]byte("ACT[]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	if len(d) != 0 {
		t.Fatalf("expected empty directive, got %v", d)
	}
	// Empty is distinct from absent: the caller must be able to tell
	// "do nothing" from "not a directive".
	if d == nil {
		t.Fatal("empty directive must be non-nil")
	}
}

func TestExtract_FullSequence(t *testing.T) {
	payload := "noise before ACT[SEND=Hello!%0D%0A,DATA=1000,WAIT=1000,CLOSE] noise after"
	d, ok := Extract([]byte(payload))
	if !ok {
		t.Fatal("expected a directive")
	}
	want := Directive{
		{Kind: KindSend, Raw: "SEND", Param: "Hello!%0D%0A", HasParam: true},
		{Kind: KindData, Raw: "DATA", Param: "1000", HasParam: true},
		{Kind: KindWait, Raw: "WAIT", Param: "1000", HasParam: true},
		{Kind: KindClose, Raw: "CLOSE"},
	}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("got %#v, want %#v", d, want)
	}
}

func TestExtract_FirstClosingMarkerWins(t *testing.T) {
	// No escaping: a "]" inside a parameter terminates the directive.
	// Client suites depend on this exact boundary.
	d, ok := Extract([]byte("ACT[SEND=a]b,CLOSE]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	want := Directive{{Kind: KindSend, Raw: "SEND", Param: "a", HasParam: true}}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("got %#v, want %#v", d, want)
	}
}

func TestExtract_FirstOpeningMarkerWins(t *testing.T) {
	d, ok := Extract([]byte("ACT[CLOSE]ACT[SHUT]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	want := Directive{{Kind: KindClose, Raw: "CLOSE"}}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("got %#v, want %#v", d, want)
	}
}

func TestExtract_ParamSplitsOnFirstEquals(t *testing.T) {
	d, ok := Extract([]byte("ACT[SEND=a=b]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	if d[0].Param != "a=b" {
		t.Fatalf("expected param to keep later '=', got %q", d[0].Param)
	}
}

func TestExtract_AbsentParamIsNotEmptyParam(t *testing.T) {
	d, ok := Extract([]byte("ACT[SEND,SEND=]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	if d[0].HasParam {
		t.Errorf("SEND without '=' must have no parameter")
	}
	if !d[1].HasParam || d[1].Param != "" {
		t.Errorf("SEND= must have an empty parameter, got %+v", d[1])
	}
}

func TestExtract_NoTrimming(t *testing.T) {
	d, ok := Extract([]byte("ACT[ CLOSE]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	if d[0].Kind != KindInvalid || d[0].Raw != " CLOSE" {
		t.Fatalf("kind matching must be exact, got %+v", d[0])
	}
}

func TestExtract_UnknownKindIsKept(t *testing.T) {
	// Unknown kinds must survive extraction so the executor can abort
	// at the right position instead of silently skipping them.
	d, ok := Extract([]byte("ACT[CLOSE,FROB=1,SHUT]"))
	if !ok {
		t.Fatal("expected a directive")
	}
	if len(d) != 3 {
		t.Fatalf("expected 3 actions, got %v", d)
	}
	if d[1].Kind != KindInvalid || d[1].Raw != "FROB" {
		t.Fatalf("expected invalid middle action, got %+v", d[1])
	}
}

func TestExtract_Idempotent(t *testing.T) {
	payload := []byte("xACT[SEND=Hi,WAIT=5]y")
	d1, ok1 := Extract(payload)
	d2, ok2 := Extract(payload)
	if !ok1 || !ok2 || !reflect.DeepEqual(d1, d2) {
		t.Fatalf("extraction is not deterministic: %v/%v vs %v/%v", d1, ok1, d2, ok2)
	}
}

func TestParse_GlobalDirective(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"ACT[WAIT=500,CLOSE]", false},
		{"ACT[]", false},
		{"no markers here", true},
		{"ACT[FROB]", true},          // unknown kind
		{"ACT[WAIT]", true},          // missing numeric parameter
		{"ACT[WAIT=abc]", true},      // non-numeric
		{"ACT[DATA=-1]", true},       // negative
		{"ACT[DATA=1.5]", true},      // fractional
		{"ACT[SEND=bad%zz]", true},   // invalid percent-encoding
		{"ACT[SEND]", false},         // SEND without parameter is legal
	}
	for _, c := range cases {
		_, err := Parse(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("Parse(%q): err=%v, wantErr=%v", c.in, err, c.wantErr)
		}
	}
}

func TestTextParam_PercentDecoding(t *testing.T) {
	a := Action{Kind: KindSend, Raw: "SEND", Param: "Hello!%0D%0A", HasParam: true}
	text, err := a.TextParam()
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hello!\r\n" {
		t.Fatalf("got %q, want %q", text, "Hello!\r\n")
	}
}
