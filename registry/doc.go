// Package registry maintains the mapping from agent identifier to Agent
// implementation used by the orchestrator's routing path.
//
// Agent ids are case-normalized, registration is last-write-wins and lookups
// observe a consistent snapshot under concurrent registration. Falling back
// to the default agent is always explicit (Resolve) so callers can
// distinguish "routed to requested agent" from "routed to default".
package registry
