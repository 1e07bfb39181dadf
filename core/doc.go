// Package core defines the shared domain contracts of AgentRouter: the Agent
// interface, agent descriptors, conversation turns, sessions and their store,
// routing decisions, request/response shapes and the error taxonomy.
//
// Higher layers (registry, classifier, orchestrator, session stores) depend
// only on this package, never on each other's concrete types.
package core
