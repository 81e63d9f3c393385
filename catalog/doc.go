// Package catalog holds the fixed menu of model identifiers selectable for
// generation, with enough metadata to render a picker. The menu is static:
// the authoritative list lives server-side and entitlement is decided by the
// API key, so the catalog only validates spelling before a network call.
package catalog
