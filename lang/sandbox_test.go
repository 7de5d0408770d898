package lang

import (
	"errors"
	"testing"
)

func fakeWindow() Map {
	w := Map{"document": Map{}, "location": "about:blank"}
	w["window"] = w
	w["scroll"] = func(x, y int) {}

	return w
}

func fakeElement() Map {
	return Map{
		"nodeName":     "HTML",
		"children":     []any{},
		"getAttribute": func(string) string { return "" },
		"setAttribute": func(string, any) {},
	}
}

func TestSandbox_Rejects(t *testing.T) {
	wnd := fakeWindow()

	tests := []struct {
		name  string
		src   string
		scope Map
	}{
		{"constructor member", "aFunction.constructor", Map{"aFunction": func() {}}},
		{"constructor call", `aFunction.constructor("return window;")()`, Map{"aFunction": func() {}}},
		{"constructor computed", `a["constructor"]`, Map{"a": Map{}}},
		{"constructor on undefined", "missing.constructor", Map{}},
		{"proto", "a.__proto__", Map{"a": Map{}}},
		{"constructor assignment", "a.constructor = 1", Map{"a": Map{}}},
		{"window member", `anObject["wnd"]`, Map{"anObject": Map{"wnd": wnd}}},
		{"window identifier", "wnd", Map{"wnd": wnd}},
		{"window method", "wnd.scroll(500, 0)", Map{"wnd": wnd}},
		{"window result", "getWnd()", Map{"getWnd": func() any { return wnd }}},
		{"window by shape", "w", Map{"w": Map{"document": 1, "location": 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.src, err)
			}

			if _, err := e.Eval(tt.scope, nil); !errors.Is(err, ErrSecurity) {
				t.Errorf("Eval(%q) error = %v, want ErrSecurity", tt.src, err)
			}
		})
	}
}

func TestSandbox_DOMMethodNotCalled(t *testing.T) {
	var called bool

	el := fakeElement()
	el["setAttribute"] = func(string, any) { called = true }

	e, err := Parse(`el.setAttribute("evil", true)`)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Eval(Map{"el": el}, nil); !errors.Is(err, ErrSecurity) {
		t.Errorf("Eval error = %v, want ErrSecurity", err)
	}

	if called {
		t.Error("setAttribute was invoked on a guarded element")
	}
}

func TestSandbox_CustomGuards(t *testing.T) {
	secret := Map{"classified": true}
	scope := Map{"secret": secret, "wnd": fakeWindow()}

	isSecret := func(v any) bool { return Has(v, "classified") }

	e, err := Parse("secret", WithGuards(isSecret))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Eval(scope, nil); !errors.Is(err, ErrSecurity) {
		t.Errorf("custom guard not applied: %v", err)
	}

	// Replacing the guards drops the defaults.
	e, err = Parse("wnd.location", WithGuards(isSecret))
	if err != nil {
		t.Fatal(err)
	}

	if v, err := e.Eval(scope, nil); err != nil || v != "about:blank" {
		t.Errorf("got %v, %v", v, err)
	}

	// Names stay forbidden without any guards.
	e, err = Parse("secret.constructor", WithGuards())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Eval(scope, nil); !errors.Is(err, ErrSecurity) {
		t.Errorf("forbidden name allowed: %v", err)
	}
}

func TestIsDOMNode_WrappedCollection(t *testing.T) {
	wrapped := Map{"children": 1, "prop": 1, "attr": 1, "find": 1}
	if !IsDOMNode(wrapped) {
		t.Error("wrapped node collection not detected")
	}

	if IsDOMNode(Map{"children": 1}) {
		t.Error("plain object with children flagged as node")
	}
}
