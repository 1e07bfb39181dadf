// Package session houses concrete implementations of core.SessionStore. The
// interface itself (and the Session struct) live in the core package to
// centralize domain contracts; keeping only implementations here prevents
// higher level packages from depending on concrete storage.
//
// Add durable backends (Redis, Postgres, DynamoDB, etc.) in sub-packages
// without changing any calling code - only the wiring layer decides which
// implementation to instantiate.
package session
