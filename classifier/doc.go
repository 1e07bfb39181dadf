// Package classifier decides which registered agent should handle a request.
//
// A Classifier is a pure function of the user input, the recent conversation
// history and the available agent descriptors, apart from at most one
// outbound model call. It never guesses silently: backend failures and
// unparsable results surface as core.ErrClassification and the orchestrator
// owns the fallback policy. Ambiguous model output is resolved
// deterministically by taking the first candidate in the classifier's own
// ranked order.
package classifier
