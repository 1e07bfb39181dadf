// Package orchestrator implements the request-routing core: classify the
// incoming utterance, resolve the selected agent against the registry,
// dispatch, and commit the completed exchange to the session store.
//
// Routing per session key is strictly serialized so concurrent calls can
// never interleave a session's history; different sessions proceed
// independently. A failed dispatch leaves the session exactly as it was.
package orchestrator
