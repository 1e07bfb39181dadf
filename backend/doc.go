// Package backend defines the provider-agnostic completion abstraction used
// by classifiers and agents.
//
// Core goals:
//   - Keep the request/response shapes minimal and transport independent
//   - Normalize provider failures into ErrUnavailable / ErrTimeout so callers
//     can discriminate with errors.Is
//   - Facilitate lightweight mocking for tests (Mock)
//
// Providers (Anthropic, OpenAI, Bedrock) implement the Backend interface from
// this package so higher layers remain decoupled from vendor SDKs.
package backend
