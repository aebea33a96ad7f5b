// Package services contains the EasyDrink client's application services:
// the identity adapter that turns provider results into users and typed
// errors, the session store the UI routes on, and the per-user favorites
// store.
package services
