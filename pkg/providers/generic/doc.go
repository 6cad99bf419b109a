// Package generic implements the completion backend for self-hosted,
// OpenAI-compatible text completion servers.
//
// Any connection type without a dedicated adapter is served here, which
// covers KoboldCpp, text-generation-webui, llama.cpp server, vLLM and
// similar servers exposing POST /v1/completions.
//
// # Endpoint
//
// The endpoint is derived from the connection URL by keeping the scheme,
// host and port and replacing everything else with /v1/completions:
//
//	https://h.example:8443/api  ->  https://h.example:8443/v1/completions
//
// # Payload
//
// The request body carries every settings field (except the record keys
// _id and name) plus settings extras, then model, prompt and stop. The core
// fields win when a settings key collides with them.
package generic
