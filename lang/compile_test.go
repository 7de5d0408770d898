package lang

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustEval(t *testing.T, src string, scope, locals any) any {
	t.Helper()

	e, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}

	v, err := e.Eval(scope, locals)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}

	return v
}

func TestEval_Literals(t *testing.T) {
	tests := []struct {
		src      string
		want     any
		constant bool
		literal  bool
	}{
		{"42", 42.0, true, true},
		{"'abc'", "abc", true, true},
		{"null", nil, true, true},
		{"true", true, true, true},
		{"false", false, true, true},
		{"[]", []any{}, true, true},
		{"[1, 'two', [3], true,]", []any{1.0, "two", []any{3.0}, true}, true, true},
		{"{}", Map{}, true, true},
		{`{a: 1, "b c": [2], 'd': {e: null}}`, Map{"a": 1.0, "b c": []any{2.0}, "d": Map{"e": nil}}, true, true},
		{"[1, 2, a]", []any{1.0, 2.0, Undefined}, false, true},
		{"[1, 2, [[[[[a]]]]]]", []any{1.0, 2.0, []any{[]any{[]any{[]any{[]any{Undefined}}}}}}, false, true},
		{"{a: 1, b: {c: d}}", Map{"a": 1.0, "b": Map{"c": Undefined}}, false, true},
		{"!true", false, true, false},
		{"-42", -42.0, true, false},
		{"1 + 2 * 3", 7.0, true, false},
		{"a", Undefined, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			if e.Constant() != tt.constant {
				t.Errorf("Constant() = %v, want %v", e.Constant(), tt.constant)
			}

			if e.Literal() != tt.literal {
				t.Errorf("Literal() = %v, want %v", e.Literal(), tt.literal)
			}

			got, err := e.Eval(Map{}, nil)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_LiteralContainersAreFresh(t *testing.T) {
	e, err := Parse("[1, {a: 2}]")
	if err != nil {
		t.Fatal(err)
	}

	first, _ := e.Eval(nil, nil)
	second, _ := e.Eval(nil, nil)

	if StrictEqual(first, second) {
		t.Error("array literal returned the same instance twice")
	}

	if !StrictEqual(first, first) {
		t.Error("array literal not identical to itself")
	}
}

func TestEval_EmptyArraysAreDistinct(t *testing.T) {
	for _, src := range []string{"[] === []", "[] == []", "a === []"} {
		if got := mustEval(t, src, Map{"a": []any{}}, nil); got != false {
			t.Errorf("%s = %v, want false", src, got)
		}
	}

	if got := mustEval(t, "a === a", Map{"a": []any{}}, nil); got != true {
		t.Errorf("a === a = %v, want true", got)
	}
}

func TestStrictEqual_SliceIdentity(t *testing.T) {
	a := make([]any, 1, 4)
	grown := append(a, 2.0)

	if !StrictEqual(a, grown) {
		t.Error("slice grown in place lost its identity")
	}

	if StrictEqual(a, make([]any, 1, 4)) {
		t.Error("distinct backing arrays compared identical")
	}
}

func TestCompile_Nil(t *testing.T) {
	e, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile(nil): %v", err)
	}

	v, err := e.Eval(Map{"a": 1.0}, nil)
	if err != nil || !IsUndefined(v) {
		t.Errorf("Eval = %v, %v; want undefined", v, err)
	}

	if !e.Constant() || !e.Literal() {
		t.Errorf("Constant() = %t, Literal() = %t; want true, true", e.Constant(), e.Literal())
	}
}

func TestParse_SourceKinds(t *testing.T) {
	fn := func(scope, _ any) (any, error) { return Get(scope, "x"), nil }

	e, err := Parse(fn)
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := e.Eval(Map{"x": 1}, nil); v != 1 {
		t.Errorf("function source: got %v", v)
	}

	pre, _ := Parse("1")
	if same, _ := Parse(pre); same != pre {
		t.Error("evaluator was not passed through")
	}

	noop, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := noop.Eval(nil, nil); !IsUndefined(v) {
		t.Errorf("Parse(nil) evaluator returned %v", v)
	}

	if _, err := Parse(42); !errors.Is(err, ErrParse) {
		t.Errorf("Parse(42) error = %v, want ErrParse", err)
	}
}

func TestEval_Lookup(t *testing.T) {
	scope := Map{
		"aKey":  42,
		"deep":  Map{"a": Map{"b": Map{"c": 7}}},
		"plain": map[string]any{"nested": "ok"},
	}

	tests := []struct {
		src    string
		locals any
		want   any
	}{
		{"aKey", nil, 42},
		{"deep.a.b.c", nil, 7},
		{"plain.nested", nil, "ok"},
		{"aKey.missing", nil, Undefined},
		{"nope.a.b.c", nil, Undefined},
		{"aKey", Map{"aKey": 43}, 43},
		{"aKey", Map{"other": 43}, 42},
		{"deep.a", Map{"deep": Map{}}, Undefined},
		{"deep.a.b.c", Map{"unrelated": 1}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := mustEval(t, tt.src, scope, tt.locals)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_ComputedAccess(t *testing.T) {
	scope := Map{
		"aKey":    Map{"x": 42},
		"anArray": []any{1, 2, 3},
		"lock":    Map{"theKey": 42},
		"keys":    Map{"aKey": "theKey"},
		"key":     "x",
		"text":    "hey",
		"mixed":   Map{"arr": []any{Map{"name": "first"}}},
	}

	tests := []struct {
		src  string
		want any
	}{
		{`aKey["x"]`, 42},
		{`aKey[key]`, 42},
		{"anArray[1]", 2},
		{"anArray.length", 3.0},
		{"anArray[9]", Undefined},
		{`lock[keys["aKey"]]`, 42},
		{`mixed.arr[0]["name"]`, "first"},
		{`mixed["arr"][0].name`, "first"},
		{"text.length", 3.0},
		{"text[1]", "e"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := mustEval(t, tt.src, scope, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_Calls(t *testing.T) {
	method := Function(func(this any, _ ...any) (any, error) {
		return Get(this, "aMember"), nil
	})

	scope := Map{
		"aFunction": Function(func(_ any, args ...any) (any, error) {
			sum := 0.0
			for _, a := range args {
				sum += ToNumber(a)
			}

			return sum, nil
		}),
		"n":       3,
		"argFn":   func() int { return 2 },
		"anObject": Map{
			"aMember":   42,
			"aFunction": method,
			"factory": Function(func(any, ...any) (any, error) {
				return method, nil
			}),
		},
		"greet": func(name string, times int) string {
			out := ""
			for range times {
				out += name
			}

			return out
		},
		"fails": func() (int, error) { return 0, errors.New("boom") },
	}

	tests := []struct {
		src  string
		want any
	}{
		{"aFunction()", 0.0},
		{"aFunction(37, n, argFn())", 42.0},
		{"anObject.aFunction()", 42},
		{`anObject["aFunction"]()`, 42},
		{"anObject.aFunction  ()", 42},
		{"anObject.factory()()", Undefined},
		{"greet('ab', 2)", "abab"},
		{"missing()", Undefined},
		{"anObject.missing(1)", Undefined},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := mustEval(t, tt.src, scope, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("host error", func(t *testing.T) {
		e, _ := Parse("fails()")
		if _, err := e.Eval(scope, nil); err == nil || err.Error() != "boom" {
			t.Errorf("expected host error, got %v", err)
		}
	})

	t.Run("not a function", func(t *testing.T) {
		e, _ := Parse("n()")
		if _, err := e.Eval(scope, nil); !errors.Is(err, ErrNotFunction) {
			t.Errorf("expected ErrNotFunction, got %v", err)
		}
	})
}

func TestEval_Assignment(t *testing.T) {
	t.Run("identifier", func(t *testing.T) {
		scope := Map{}
		if v := mustEval(t, "anAttribute = 42", scope, nil); v != 42.0 {
			t.Errorf("result = %v", v)
		}

		if scope["anAttribute"] != 42.0 {
			t.Errorf("scope = %v", scope)
		}
	})

	t.Run("call result", func(t *testing.T) {
		scope := Map{"aFunction": func() int { return 42 }}
		mustEval(t, "anAttribute = aFunction()", scope, nil)

		if scope["anAttribute"] != 42 {
			t.Errorf("scope = %v", scope)
		}
	})

	t.Run("nested", func(t *testing.T) {
		scope := Map{"anObject": Map{}}
		mustEval(t, "anObject.anAttribute = 42", scope, nil)

		if diff := cmp.Diff(Map{"anObject": Map{"anAttribute": 42.0}}, scope); diff != "" {
			t.Errorf("scope mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("auto-create", func(t *testing.T) {
		scope := Map{}
		mustEval(t, "anObject.deeper.anAttribute = 42", scope, nil)

		want := Map{"anObject": Map{"deeper": Map{"anAttribute": 42.0}}}
		if diff := cmp.Diff(want, scope); diff != "" {
			t.Errorf("scope mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("computed", func(t *testing.T) {
		scope := Map{"anObject": Map{"otherObject": Map{}}}
		mustEval(t, `anObject["otherObject"].nested = 42`, scope, nil)
		mustEval(t, `anObject["anAttribute"] = 43`, scope, nil)

		want := Map{"anObject": Map{"otherObject": Map{"nested": 42.0}, "anAttribute": 43.0}}
		if diff := cmp.Diff(want, scope); diff != "" {
			t.Errorf("scope mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("inside literals", func(t *testing.T) {
		scope := Map{}
		if diff := cmp.Diff([]any{1.0}, mustEval(t, "[a = 1]", scope, nil)); diff != "" {
			t.Error(diff)
		}

		if diff := cmp.Diff(Map{"a": 1.0}, mustEval(t, "{a: b = 1}", scope, nil)); diff != "" {
			t.Error(diff)
		}

		if scope["a"] != 1.0 || scope["b"] != 1.0 {
			t.Errorf("scope = %v", scope)
		}
	})

	t.Run("locals owning the name", func(t *testing.T) {
		scope, locals := Map{}, Map{"x": 0}
		mustEval(t, "x = 5", scope, locals)

		if locals["x"] != 5.0 || Has(scope, "x") {
			t.Errorf("scope = %v, locals = %v", scope, locals)
		}
	})

	t.Run("missing root created on scope", func(t *testing.T) {
		scope, locals := Map{}, Map{"y": 1}
		mustEval(t, "obj.x = 5", scope, locals)

		if Has(locals, "obj") || Get(Get(scope, "obj"), "x") != 5.0 {
			t.Errorf("scope = %v, locals = %v", scope, locals)
		}
	})

	t.Run("array element", func(t *testing.T) {
		arr := []any{1, 2}
		mustEval(t, "arr[1] = 9", Map{"arr": arr}, nil)

		if arr[1] != 9.0 {
			t.Errorf("arr = %v", arr)
		}
	})

	t.Run("non-object container", func(t *testing.T) {
		e, _ := Parse("n.x = 1")
		if _, err := e.Eval(Map{"n": 3}, nil); !errors.Is(err, ErrNotAssignable) {
			t.Errorf("expected ErrNotAssignable, got %v", err)
		}
	})

	t.Run("nil scope", func(t *testing.T) {
		e, _ := Parse("x = 1")
		if _, err := e.Eval(nil, nil); !errors.Is(err, ErrNotAssignable) {
			t.Errorf("expected ErrNotAssignable, got %v", err)
		}
	})
}

func TestEval_Operators(t *testing.T) {
	tests := []struct {
		src   string
		scope Map
		want  any
	}{
		{"+42", nil, 42.0},
		{"+a", Map{"a": 42}, 42.0},
		{"!42", nil, false},
		{"!a", Map{"a": false}, true},
		{"!!a", Map{"a": false}, false},
		{"!!!a", Map{"a": false}, true},
		{"-a", Map{"a": 42}, -42.0},
		{"--a", Map{"a": -42}, -42.0},
		{"-a", Map{}, 0.0},
		{"42 + 0", nil, 42.0},
		{"42 - 43", nil, -1.0},
		{"21 * 2", nil, 42.0},
		{"84 / 2", nil, 42.0},
		{"85 % 43", nil, 42.0},
		{"-7 % 3", nil, -1.0},
		{"2 + 3 * 5", nil, 17.0},
		{"36 * 2 % 5", nil, 2.0},
		{"36 - 2 * 5 + 1", nil, 27.0},
		{"a - b", Map{"a": 20}, 20.0},
		{"a - b", Map{"b": 20}, -20.0},
		{"a - b", Map{}, 0.0},
		{"a + b", Map{"a": 20}, 20.0},
		{"a + b", Map{"b": 20}, 20.0},
		{"a + b", Map{}, Undefined},
		{"'a' + 1", nil, "a1"},
		{"1 + '2'", nil, "12"},
		{"1 < 2", nil, true},
		{"1 > 2", nil, false},
		{"1 <= 1", nil, true},
		{"2 >= 3", nil, false},
		{"'a' < 'b'", nil, true},
		{"'10' < 9", nil, false},
		{"42 == 42", nil, true},
		{`42 == "42"`, nil, true},
		{"42 != 42", nil, false},
		{"42 === 42", nil, true},
		{`42 === "42"`, nil, false},
		{"42 !== 42", nil, false},
		{"null == a", Map{}, true},
		{"null === a", Map{}, false},
		{`2 == "2" > 2 === "2"`, nil, false},
		{"2 + 3 < 6 - 2", nil, false},
		{"(2 + 3) * 2", nil, 10.0},
		{"a = 1 + 2", Map{}, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := mustEval(t, tt.src, tt.scope, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("NaN", func(t *testing.T) {
		got := mustEval(t, "a * 2", Map{}, nil)
		if f, ok := got.(float64); !ok || !math.IsNaN(f) {
			t.Errorf("undefined * 2 = %v, want NaN", got)
		}
	})
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		"1 +",
		"(1",
		"[1, 2",
		"{a 1}",
		"{1: 2}",
		"a.",
		"42 = 1",
		"a() = 1",
		"1 2",
		")",
		"a b",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse(%q) error = %v, want ErrParse", src, err)
			}
		})
	}
}

func TestParse_EmptySource(t *testing.T) {
	e, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := e.Eval(nil, nil); !IsUndefined(v) {
		t.Errorf("empty expression = %v", v)
	}
}
