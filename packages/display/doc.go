// Package display owns the viewport display state handling around a
// capture: saving a panel's toggles and isolate-select state, resolving a
// mode and object filter into a concrete mutation plan, applying that plan,
// and restoring the saved state afterwards.
//
// Restore is deliberately forgiving. Whatever happened during the capture,
// the saved state is re-applied on a best-effort basis and problems are
// logged rather than raised, so the user's viewport comes back even when
// the capture itself failed.
package display
