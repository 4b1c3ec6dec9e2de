// Package host is an in-memory host tree: the mutable node structure the
// reconciliation engine mounts templates into and patches across renders.
//
// A Document owns every node it creates, assigns each one a stable numeric
// ID, and keeps the per-node event listener table. Markup is parsed with
// golang.org/x/net/html and converted into host nodes, so the engine never
// touches the parser's node type directly.
//
// All mutations go through Document methods so an Observer can record them.
// The engine's idempotence tests and the preview transport both consume the
// resulting Mutation stream.
//
// A Document is not safe for concurrent use. The rendering core is fully
// synchronous and single-threaded; callers that host a Document on a server
// must serialize access themselves (the preview Session does this on its
// read loop).
package host
