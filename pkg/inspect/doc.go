// Package inspect exposes a live, read-only view of named binding cells.
//
// Cells are tracked in a Registry from the engine thread. Each change is
// re-read by a listener, stored as a Snapshot and pushed to websocket
// clients through a Hub. HTTP handlers only ever read snapshots, so the
// graph itself stays confined to its owning goroutine.
//
//	reg := inspect.NewRegistry()
//	hub := inspect.NewHub(reg, logger)
//	untrack, err := inspect.Track(reg, "label", label)
//
//	http.ListenAndServe(":7070", inspect.NewHandler(reg, hub, promRegistry))
package inspect
