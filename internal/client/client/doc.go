// Package client contains the identity-provider side of the EasyDrink client.
//
// # Overview
//
//  1. Provider, the black-box contract every identity provider implements:
//     sign up, sign in, sign out, password reset and restoring the persisted
//     session (CurrentAccount).
//  2. GRPCClient, the provider backed by the EasyDrink identity server. It
//     injects the access token into outgoing calls and transparently refreshes
//     it when the server reports expiry.
//  3. TokenStore, which persists the provider session in the local database so
//     a restart can pick it up again.
//  4. InitDatabase / RunMigrations, the local SQLite bootstrap.
//
// # Error Handling
//
// Provider failures are *ProviderError values carrying an "auth/..." code.
// Connectivity problems always use CodeNetworkRequestFailed and wrap
// ErrUnavailable.
package client
