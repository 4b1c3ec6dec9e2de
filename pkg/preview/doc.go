// Package preview serves a component tree to a browser for development.
//
// The preview server keeps the real host tree on the server: the initial
// page load carries the rendered HTML annotated with node identifiers, and
// a WebSocket session streams host mutations to a thin client that replays
// them against the live DOM. Browser events travel the other way and are
// dispatched into the engine.
//
//	srv := preview.New(cfg, func() *engine.Definition { return Counter(nil) })
//	log.Fatal(srv.ListenAndServe(context.Background()))
package preview
