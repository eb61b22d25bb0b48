// Package state records where the debug bridge of a running host can be
// reached.
//
// The bridge writes status.json when the debug server starts and marks it
// stopped on teardown; `realmbridge status` reads it back.
//
//	repo := state.NewFileRepository(stateDir)
//	st, err := repo.Load(ctx)
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package state
