// Package agent provides the routable agent implementations: a generic
// backend-driven ModelAgent plus the domain specialists (banking, document,
// stock, knowledge) and the comedian demo agents. Each specialist is a thin
// configuration of ModelAgent, optionally enriched with external data
// (stock quotes, knowledge retrieval) before the completion call.
package agent
