// Package completion turns an inbound completion request into one backend
// call.
//
// For each request the Dispatcher reads the store's default ids once,
// resolves the connection and settings, resolves the character (inline or
// stored; a missing one is logged and replaced by a nameless "Bot"),
// assembles the prompt within the settings' context length, derives stop
// sequences from the full chat log plus the model's quirk tokens, and
// hands the result to the backend registered for the connection type. The
// backend's JSON is returned unmodified.
//
// Connection keys of the form ${secret:name} are resolved through the
// configured KeyResolver just before the backend call. The stored record
// keeps the reference.
//
// Complete never fails: it logs the error and returns nil. TryComplete
// returns the error for callers that need it.
package completion
