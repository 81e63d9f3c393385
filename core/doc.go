// Package core defines the content model shared by all providers: role-based
// Content values composed of ordered, heterogeneous Parts. The part set is
// intentionally closed (text and inline media) so providers can exhaustively
// translate it to their wire formats.
package core
