// Package cli is the interactive EasyDrink terminal client.
//
// It wires configuration, the local store, the identity provider, the
// session and favorites services and the recipe catalog, then runs a REPL.
// The prompt only appears once the initial session is known.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
