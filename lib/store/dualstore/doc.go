// Package dualstore implements store.IStore on top of two backends that are treated
// as one logical record per key:
//
//   - a persist.Engine: the primary backend. Reads are answered from its cache
//     (GetSync) or authoritatively (Get); its durable writes happen in the background.
//   - a native.Storage: the synchronous fallback every context of the profile can
//     read immediately, even before the engine warmed its cache.
//
// Set serializes the value to JSON once and writes the same bytes to both. When Set
// returns, native storage holds the value and the engine cache was updated; the
// durable engine write may still be queued.
//
// Usage Example:
//
//	engine, _ := sqlite.NewEngine(filepath.Join(profile, "persist.sqlite"))
//	local, _ := filestore.Open(filepath.Join(profile, "local"))
//	st := dualstore.NewDualStore(engine, local)
//	defer st.Close()
//
//	_ = st.Set("editor/theme", "dark")
//	raw, ok := st.GetSync("editor/theme") // `"dark"`, true
//
// The store does not notify anybody; bindings broadcast their own changes and the
// native storage watcher reports the changes of other contexts.
package dualstore
