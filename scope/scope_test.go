package scope

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/log"
)

// get returns an evaluator reading key from the scope.
func get(key string) lang.Evaluator {
	return lang.EvalFunc(func(sc, _ any) (any, error) {
		return sc.(*Scope).Value(key), nil
	})
}

// run returns an evaluator that calls fn and yields undefined.
func run(fn func(s *Scope)) lang.Evaluator {
	return lang.EvalFunc(func(sc, _ any) (any, error) {
		fn(sc.(*Scope))

		return lang.Undefined, nil
	})
}

// counter returns a listener incrementing the float64 stored under key.
func counter(key string) Listener {
	return func(_, _ any, s *Scope) {
		s.Set(key, lang.ToNumber(s.Value(key))+1)
	}
}

func TestScope_Properties(t *testing.T) {
	s := New(WithData(map[string]any{"seed": true}))
	s.Set("aProperty", 1)

	if got := s.Value("aProperty"); got != 1 {
		t.Errorf("aProperty = %v, want 1", got)
	}

	if got := s.Value("missing"); !lang.IsUndefined(got) {
		t.Errorf("missing = %v, want undefined", got)
	}

	if diff := cmp.Diff([]string{"aProperty", "seed"}, s.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	if New().ID() == s.ID() {
		t.Error("scopes share an ID")
	}
}

func TestDigest_CallsListenerOnFirstDigest(t *testing.T) {
	s := New()

	var (
		calls    int
		received any
	)

	s.Watch(
		lang.EvalFunc(func(sc, _ any) (any, error) {
			received = sc

			return "something", nil
		}),
		func(newValue, oldValue any, _ *Scope) {
			calls++

			if newValue != "something" || oldValue != "something" {
				t.Errorf("first call got (%v, %v)", newValue, oldValue)
			}
		},
		false,
	)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}

	if received != s {
		t.Error("watch function did not receive the scope")
	}
}

func TestDigest_ListenerOnChange(t *testing.T) {
	s := New()
	s.Set("someValue", "a")
	s.Set("counter", 0.0)

	s.Watch(get("someValue"), counter("counter"), false)

	if got := s.Value("counter"); got != 0.0 {
		t.Fatalf("counter = %v before digest", got)
	}

	steps := []struct {
		set  any
		want float64
	}{
		{nil, 1},
		{nil, 1},
		{"b", 2},
	}

	for i, step := range steps {
		if step.set != nil {
			s.Set("someValue", step.set)
		}

		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if got := s.Value("counter"); got != step.want {
			t.Errorf("step %d: counter = %v, want %v", i, got, step.want)
		}
	}
}

func TestDigest_InitialUndefined(t *testing.T) {
	s := New()
	s.Set("someValue", lang.Undefined)
	s.Set("counter", 0.0)

	s.Watch(get("someValue"), counter("counter"), false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if got := s.Value("counter"); got != 1.0 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestWatch_NilListenerAndFunction(t *testing.T) {
	s := New()

	var evaluated bool

	s.Watch(lang.EvalFunc(func(any, any) (any, error) {
		evaluated = true

		return "something", nil
	}), nil, false)
	s.Watch(nil, nil, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if !evaluated {
		t.Error("watch function was not evaluated")
	}
}

func TestDigest_ChainedWatchers(t *testing.T) {
	s := New()
	s.Set("name", "zhaoke")

	// Registered before the watcher that feeds it.
	s.Watch(get("nameUpper"), func(newValue, _ any, s *Scope) {
		if str, ok := newValue.(string); ok {
			s.Set("initial", str[:1]+".")
		}
	}, false)

	s.Watch(get("name"), func(newValue, _ any, s *Scope) {
		if str, ok := newValue.(string); ok {
			s.Set("nameUpper", strings.ToUpper(str))
		}
	}, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if got := s.Value("initial"); got != "Z." {
		t.Errorf("initial = %v, want Z.", got)
	}
}

func TestDigest_GivesUpAfterTTL(t *testing.T) {
	s := New()
	s.Set("counterA", 0.0)
	s.Set("counterB", 0.0)

	s.Watch(get("counterA"), counter("counterB"), false)
	s.Watch(get("counterB"), counter("counterA"), false)

	err := s.Digest()
	if !errors.Is(err, ErrDigestTTL) {
		t.Fatalf("Digest error = %v, want ErrDigestTTL", err)
	}

	if s.Phase() != PhaseNone {
		t.Errorf("phase = %q after ttl failure", s.Phase())
	}

	// Eleven passes run: the first and ten more allowed by the ttl.
	if got := s.Value("counterA"); got != 11.0 {
		t.Errorf("counterA = %v, want 11", got)
	}
}

func TestDigest_WithTTL(t *testing.T) {
	s := New(WithTTL(3))
	s.Set("n", 0.0)

	// Dirty for four passes: n goes 0, 1, 2, 3 and then settles.
	s.Watch(get("n"), func(newValue, _ any, s *Scope) {
		if n := lang.ToNumber(newValue); n < 3 {
			s.Set("n", n+1)
		}
	}, false)

	if err := s.Digest(); !errors.Is(err, ErrDigestTTL) {
		t.Fatalf("ttl 3: error = %v, want ErrDigestTTL", err)
	}

	s = New(WithTTL(4))
	s.Set("n", 0.0)
	s.Watch(get("n"), func(newValue, _ any, s *Scope) {
		if n := lang.ToNumber(newValue); n < 3 {
			s.Set("n", n+1)
		}
	}, false)

	if err := s.Digest(); err != nil {
		t.Fatalf("ttl 4: %v", err)
	}
}

func TestDigest_ShortCircuit(t *testing.T) {
	tests := []struct {
		name         string
		shortCircuit bool
		first, total int
	}{
		{"enabled", true, 20, 31},
		{"disabled", false, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithShortCircuit(tt.shortCircuit))

			array := make([]any, 10)
			for i := range array {
				array[i] = float64(i)
			}

			s.Set("array", array)

			executions := 0

			for i := range 10 {
				s.Watch(lang.EvalFunc(func(sc, _ any) (any, error) {
					executions++

					return lang.Get(sc.(*Scope).Value("array"), i), nil
				}), nil, false)
			}

			if err := s.Digest(); err != nil {
				t.Fatal(err)
			}

			if executions != tt.first {
				t.Errorf("first digest: %d executions, want %d", executions, tt.first)
			}

			array[0] = 4.0

			if err := s.Digest(); err != nil {
				t.Fatal(err)
			}

			if executions != tt.total {
				t.Errorf("second digest: %d executions, want %d", executions, tt.total)
			}
		})
	}
}

func TestDigest_WatchAddedInListener(t *testing.T) {
	s := New()
	s.Set("aValue", "abc")
	s.Set("counter", 0.0)

	s.Watch(get("aValue"), func(_, _ any, s *Scope) {
		s.Watch(get("aValue"), counter("counter"), false)
	}, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if got := s.Value("counter"); got != 1.0 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestDigest_ValueEquality(t *testing.T) {
	tests := []struct {
		name string
		deep bool
		want float64
	}{
		{"reference", false, 1},
		{"value", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()

			arr := []any{1.0, 2.0, lang.Map{"k": 3.0}}
			s.Set("aValue", arr)
			s.Set("counter", 0.0)

			s.Watch(get("aValue"), counter("counter"), tt.deep)

			if err := s.Digest(); err != nil {
				t.Fatal(err)
			}

			// In-place mutation keeps the slice identity.
			arr[2].(lang.Map)["k"] = 4.0

			if err := s.Digest(); err != nil {
				t.Fatal(err)
			}

			if got := s.Value("counter"); got != tt.want {
				t.Errorf("counter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDigest_ArrayGrownInPlace(t *testing.T) {
	tests := []struct {
		name string
		deep bool
		want float64
	}{
		{"reference", false, 1},
		{"value", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()

			arr := make([]any, 1, 4)
			s.Set("aValue", arr)
			s.Set("counter", 0.0)

			s.Watch(get("aValue"), counter("counter"), tt.deep)

			if err := s.Digest(); err != nil {
				t.Fatal(err)
			}

			// Appending within capacity reuses the backing array.
			s.Set("aValue", append(arr, 2.0))

			if err := s.Digest(); err != nil {
				t.Fatal(err)
			}

			if got := s.Value("counter"); got != tt.want {
				t.Errorf("counter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDigest_ValueEqualityWithFunctions(t *testing.T) {
	s := New()
	fn := lang.Function(func(any, ...any) (any, error) { return nil, nil })
	s.Set("v", lang.Map{"f": fn, "n": math.NaN()})

	calls := 0
	s.Watch(get("v"), func(any, any, *Scope) { calls++ }, true)

	for range 2 {
		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}
	}

	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
}

func TestDigest_NaN(t *testing.T) {
	for _, deep := range []bool{false, true} {
		s := New()
		s.Set("aValue", math.NaN())
		s.Set("counter", 0.0)

		s.Watch(get("aValue"), counter("counter"), deep)

		for range 2 {
			if err := s.Digest(); err != nil {
				t.Fatalf("deep=%v: %v", deep, err)
			}
		}

		if got := s.Value("counter"); got != 1.0 {
			t.Errorf("deep=%v: counter = %v, want 1", deep, got)
		}
	}
}

func TestDigest_WatchErrorPropagates(t *testing.T) {
	s := New()
	s.Set("el", lang.Map{
		"nodeName":     "DIV",
		"children":     []any{},
		"getAttribute": func(string) string { return "" },
	})

	if _, err := s.WatchExpr("el", nil, false); err != nil {
		t.Fatal(err)
	}

	if err := s.Digest(); !errors.Is(err, lang.ErrSecurity) {
		t.Fatalf("Digest error = %v, want ErrSecurity", err)
	}

	if s.Phase() != PhaseNone {
		t.Errorf("phase = %q after failed digest", s.Phase())
	}
}

func TestEval(t *testing.T) {
	s := New()
	s.Set("aValue", 42.0)

	got, err := s.Eval(get("aValue"), nil)
	if err != nil || got != 42.0 {
		t.Errorf("Eval = %v, %v", got, err)
	}

	got, err = s.Eval(lang.EvalFunc(func(sc, locals any) (any, error) {
		return lang.ToNumber(sc.(*Scope).Value("aValue")) + lang.ToNumber(locals), nil
	}), 2)
	if err != nil || got != 44.0 {
		t.Errorf("Eval with locals = %v, %v", got, err)
	}

	got, err = s.EvalExpr("aValue + extra", lang.Map{"extra": 2})
	if err != nil || got != 44.0 {
		t.Errorf("EvalExpr = %v, %v", got, err)
	}

	if got, _ := s.Eval(nil, nil); !lang.IsUndefined(got) {
		t.Errorf("Eval(nil) = %v, want undefined", got)
	}
}

func TestApply(t *testing.T) {
	s := New()
	s.Set("a", "someValue")
	s.Set("counter", 0.0)

	s.Watch(get("a"), counter("counter"), false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	v, err := s.Apply(run(func(s *Scope) { s.Set("a", "otherValue") }))
	if err != nil {
		t.Fatal(err)
	}

	if !lang.IsUndefined(v) {
		t.Errorf("Apply result = %v", v)
	}

	if got := s.Value("counter"); got != 2.0 {
		t.Errorf("counter = %v, want 2", got)
	}
}

func TestApply_DigestsAfterFailure(t *testing.T) {
	s := New()
	s.Set("counter", 0.0)

	s.Watch(get("a"), counter("counter"), false)

	boom := errors.New("boom")

	_, err := s.Apply(lang.EvalFunc(func(sc, _ any) (any, error) {
		sc.(*Scope).Set("a", 1.0)

		return nil, boom
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("Apply error = %v, want boom", err)
	}

	if got := s.Value("counter"); got != 1.0 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestApply_Expression(t *testing.T) {
	s := New()

	fn, err := lang.Parse("user.name = 'ada'")
	if err != nil {
		t.Fatal(err)
	}

	var seen any

	if _, err := s.WatchExpr("user.name", func(newValue, _ any, _ *Scope) {
		seen = newValue
	}, false); err != nil {
		t.Fatal(err)
	}

	if v, err := s.Apply(fn); err != nil || v != "ada" {
		t.Fatalf("Apply = %v, %v", v, err)
	}

	if seen != "ada" {
		t.Errorf("listener saw %v, want ada", seen)
	}
}

func TestEvalAsync_DefersWithinDigest(t *testing.T) {
	s := New()
	s.Set("a", []any{1, 2, 3})
	s.Set("asyncEvaluated", false)

	s.Watch(get("a"), func(_, _ any, s *Scope) {
		s.EvalAsync(run(func(s *Scope) { s.Set("asyncEvaluated", true) }))
		s.Set("asyncEvaluatedImmediately", s.Value("asyncEvaluated"))
	}, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if got := s.Value("asyncEvaluated"); got != true {
		t.Error("async task did not run")
	}

	if got := s.Value("asyncEvaluatedImmediately"); got != false {
		t.Error("async task ran immediately")
	}
}

func TestEvalAsync_FromWatchFunction(t *testing.T) {
	s := New()
	s.Set("aValue", []any{1, 2, 3})
	s.Set("times", 0.0)

	s.Watch(lang.EvalFunc(func(sc, _ any) (any, error) {
		s := sc.(*Scope)
		if lang.ToNumber(s.Value("times")) < 2 {
			s.EvalAsync(run(func(s *Scope) {
				s.Set("times", lang.ToNumber(s.Value("times"))+1)
			}))
		}

		return s.Value("aValue"), nil
	}), nil, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if got := s.Value("times"); got != 2.0 {
		t.Errorf("times = %v, want 2", got)
	}
}

func TestEvalAsync_EndlessFromWatchFunction(t *testing.T) {
	s := New()
	s.Set("aValue", []any{1, 2, 3})

	s.Watch(lang.EvalFunc(func(sc, _ any) (any, error) {
		s := sc.(*Scope)
		s.EvalAsync(lang.Noop)

		return s.Value("aValue"), nil
	}), nil, false)

	if err := s.Digest(); !errors.Is(err, ErrDigestTTL) {
		t.Errorf("Digest error = %v, want ErrDigestTTL", err)
	}
}

func TestPhase(t *testing.T) {
	s := New()
	s.Set("aValue", []any{1, 2, 3})

	var inWatch, inListener, inApply Phase

	s.Watch(lang.EvalFunc(func(sc, _ any) (any, error) {
		inWatch = sc.(*Scope).Phase()

		return sc.(*Scope).Value("aValue"), nil
	}), func(_, _ any, s *Scope) {
		inListener = s.Phase()
	}, false)

	if _, err := s.Apply(run(func(s *Scope) { inApply = s.Phase() })); err != nil {
		t.Fatal(err)
	}

	got := []string{inWatch.String(), inListener.String(), inApply.String(), s.Phase().String()}
	want := []string{"$digest", "$digest", "$apply", ""}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestDigest_Reentrancy(t *testing.T) {
	s := New()

	var digestErr, applyErr error

	s.Watch(get("x"), func(_, _ any, s *Scope) {
		digestErr = s.Digest()
		_, applyErr = s.Apply(lang.Noop)

		if s.Phase() != PhaseDigest {
			t.Errorf("phase changed to %q by failed reentry", s.Phase())
		}
	}, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if !errors.Is(digestErr, ErrInProgress) {
		t.Errorf("nested Digest error = %v, want ErrInProgress", digestErr)
	}

	if !errors.Is(applyErr, ErrInProgress) {
		t.Errorf("nested Apply error = %v, want ErrInProgress", applyErr)
	}
}

func TestEvalAsync_SchedulesDigest(t *testing.T) {
	loop := NewLoop()
	s := New(WithHost(loop))
	s.Set("aValue", "abc")
	s.Set("counter", 0.0)

	s.Watch(get("aValue"), counter("counter"), false)

	s.EvalAsync(lang.Noop)
	s.EvalAsync(lang.Noop)

	if got := s.Value("counter"); got != 0.0 {
		t.Fatalf("counter = %v before the host ran", got)
	}

	if n := loop.Pending(); n != 1 {
		t.Errorf("pending = %d, want a single scheduled digest", n)
	}

	loop.Flush()

	if got := s.Value("counter"); got != 1.0 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestEvalAsync_NoScheduleDuringPhase(t *testing.T) {
	loop := NewLoop()
	s := New(WithHost(loop))

	s.Watch(get("x"), func(_, _ any, s *Scope) {
		s.EvalAsync(lang.Noop)
	}, false)

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if n := loop.Pending(); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestPostDigest_RunsOnce(t *testing.T) {
	s := New()
	s.Set("counter", 0.0)

	s.PostDigest(func() { counter("counter")(nil, nil, s) })

	if got := s.Value("counter"); got != 0.0 {
		t.Fatalf("counter = %v before digest", got)
	}

	for range 2 {
		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if got := s.Value("counter"); got != 1.0 {
			t.Errorf("counter = %v, want 1", got)
		}
	}
}

func TestPostDigest_OutsideLoop(t *testing.T) {
	s := New()
	s.Set("a", "a")

	s.PostDigest(func() { s.Set("a", "b") })

	s.Watch(get("a"), func(newValue, _ any, s *Scope) {
		s.Set("watchVal", newValue)
	}, false)

	for _, want := range []string{"a", "b"} {
		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if got := s.Value("watchVal"); got != want {
			t.Errorf("watchVal = %v, want %v", got, want)
		}
	}
}

func TestDeferredTasks_Isolated(t *testing.T) {
	var handled []error

	s := New(WithExceptionHandler(func(err error) { handled = append(handled, err) }))

	var ran []string

	s.EvalAsync(lang.EvalFunc(func(any, any) (any, error) {
		return nil, errors.New("task failed")
	}))
	s.EvalAsync(run(func(*Scope) { panic("task panicked") }))
	s.EvalAsync(run(func(*Scope) { ran = append(ran, "async") }))

	s.PostDigest(func() { panic("callback panicked") })
	s.PostDigest(func() { ran = append(ran, "post") })

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"async", "post"}, ran); diff != "" {
		t.Errorf("ran mismatch (-want +got):\n%s", diff)
	}

	if len(handled) != 3 {
		t.Fatalf("handled %d errors, want 3: %v", len(handled), handled)
	}

	for _, err := range handled {
		if !errors.Is(err, ErrTask) {
			t.Errorf("handled error %v is not ErrTask", err)
		}
	}
}

func TestDefaultExceptionHandler_Logs(t *testing.T) {
	var buf bytes.Buffer

	s := New(WithLogger(log.Make(&buf)))
	s.PostDigest(func() { panic("oops") })

	if err := s.Digest(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, "oops") {
		t.Errorf("exception not logged:\n%s", out)
	}
}

func TestDeregister(t *testing.T) {
	s := New()
	s.Set("aValue", "abc")
	s.Set("counter", 0.0)

	destroy := s.Watch(get("aValue"), counter("counter"), false)

	steps := []struct {
		value   string
		destroy bool
		want    float64
	}{
		{"abc", false, 1},
		{"def", false, 2},
		{"ghi", true, 2},
	}

	for _, step := range steps {
		s.Set("aValue", step.value)

		if step.destroy {
			destroy()
			destroy()
		}

		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if got := s.Value("counter"); got != step.want {
			t.Errorf("value %s: counter = %v, want %v", step.value, got, step.want)
		}
	}

	if n := s.Watchers(); n != 0 {
		t.Errorf("watchers = %d after deregistration", n)
	}
}

func TestDeregister_DuringDigest(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		s := New()
		s.Set("a", "abc")

		var calls []string

		s.Watch(get("a"), func(any, any, *Scope) { calls = append(calls, "first") }, false)

		var self Deregister
		self = s.Watch(get("a"), func(any, any, *Scope) {
			calls = append(calls, "second")
			self()
		}, false)

		s.Watch(get("a"), func(any, any, *Scope) { calls = append(calls, "third") }, false)

		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff([]string{"first", "second", "third"}, calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("later watcher", func(t *testing.T) {
		s := New()
		s.Set("a", "abc")

		var (
			calls  []string
			second Deregister
		)

		s.Watch(get("a"), func(any, any, *Scope) {
			calls = append(calls, "first")
			second()
		}, false)

		second = s.Watch(get("a"), func(any, any, *Scope) { calls = append(calls, "second") }, false)
		s.Watch(get("a"), func(any, any, *Scope) { calls = append(calls, "third") }, false)

		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff([]string{"first", "third"}, calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("earlier watcher", func(t *testing.T) {
		s := New()
		s.Set("a", "abc")

		var (
			calls []string
			first Deregister
		)

		first = s.Watch(get("a"), func(any, any, *Scope) { calls = append(calls, "first") }, false)
		s.Watch(get("a"), func(any, any, *Scope) {
			calls = append(calls, "second")
			first()
		}, false)
		s.Watch(get("a"), func(any, any, *Scope) { calls = append(calls, "third") }, false)

		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff([]string{"first", "second", "third"}, calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDigest_Idempotent(t *testing.T) {
	s := New()

	calls := 0

	for i := range 5 {
		s.Set(string(rune('a'+i)), float64(i))
		s.Watch(get(string(rune('a'+i))), func(any, any, *Scope) { calls++ }, i%2 == 0)
	}

	for range 3 {
		if err := s.Digest(); err != nil {
			t.Fatal(err)
		}
	}

	if calls != 5 {
		t.Errorf("listener calls = %d, want 5", calls)
	}
}

func TestWatchExpr_ParseError(t *testing.T) {
	s := New()

	if _, err := s.WatchExpr("a +", nil, false); !errors.Is(err, lang.ErrParse) {
		t.Errorf("WatchExpr error = %v, want ErrParse", err)
	}

	if s.Watchers() != 0 {
		t.Error("failed WatchExpr registered a watcher")
	}
}

func BenchmarkDigest(b *testing.B) {
	s := New()

	for i := range 100 {
		key := "k" + lang.ToString(i)
		s.Set(key, float64(i))

		if _, err := s.WatchExpr(key+" * 2", nil, false); err != nil {
			b.Fatal(err)
		}
	}

	for b.Loop() {
		if err := s.Digest(); err != nil {
			b.Fatal(err)
		}
	}
}
