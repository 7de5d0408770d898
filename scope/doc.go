// Package scope implements a dirty-checking change scheduler.
//
// A [Scope] holds data and a list of watchers. Each watcher pairs an
// [lang.Evaluator] with a [Listener]. [Scope.Digest] re-evaluates every
// watcher until no value changes, calling listeners for each change it
// finds along the way:
//
//	s := scope.New()
//	s.Set("name", "ada")
//
//	_, _ = s.WatchExpr("name", func(newValue, oldValue any, s *scope.Scope) {
//		fmt.Println(oldValue, "->", newValue)
//	}, false)
//
//	_ = s.Digest()
//
// A digest is bounded by a ttl. Listeners that keep dirtying each other
// make Digest fail with [ErrDigestTTL] instead of looping forever.
//
// Work deferred with [Scope.EvalAsync] runs at the start of the next
// digest pass. If nothing else digests the scope, the scope asks its
// [Host] to run a digest later. Callbacks registered with
// [Scope.PostDigest] run once after the next digest settles.
//
// A Scope is not safe for concurrent use.
package scope
