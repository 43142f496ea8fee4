// Package domain holds the core value types of the turn router: the
// per-turn state record, the append-only step ledger, routing decisions and
// trace events. It has no dependencies on transports or adapters.
package domain
