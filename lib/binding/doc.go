// Package binding provides Binding, the per-key reactive value application code
// works with.
//
// A binding reads its initial value from the store, falls back to native storage and
// then to a caller supplied default. Set and Update change the value optimistically,
// write it through the store and broadcast it on the bus's local channel so that every
// other binding of the key in the same context follows without a read. Changes made by
// other contexts arrive as storage events.
//
// Usage:
//
//	theme := binding.New(rt.Store, rt.Native, rt.Bus, "editor/theme", "light")
//	defer theme.Close()
//
//	stop := theme.Watch(func(v string) { render(v) })
//	defer stop()
//
//	theme.Set("dark")
//	theme.Update(func(prev string) string { return prev })
//
// Only exact key matches are applied. Conflicting writes from different contexts are
// not resolved: whichever notification arrives last wins.
package binding
