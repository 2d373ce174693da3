// Package symbols implements the Symbol Validator component.
//
// The validator:
//   - Loads the tradable symbol universe from the catalog service once
//     at startup, with bounded retries and doubling backoff
//   - Replaces the cached set atomically, so readers never observe a
//     partially populated universe
//   - Answers membership queries for subscription filtering
//
// Load failure after the retry budget is fatal: no subscription can be
// validated without the universe, so the caller is expected to exit.
package symbols
