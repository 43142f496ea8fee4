// Package session guards per-session conversation history. A session's
// history must never be read and appended concurrently by two in-flight
// turns, so the manager serializes turns per session with ref-counted
// in-process locks, optionally backed by a distributed lock for
// multi-replica deployments.
package session
