// Package model defines the provider-agnostic abstractions for driving text
// generation against a hosted generative-AI service.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (the official SDK adapter in model/gemini, the OpenAI-compatible
// adapter in model/openaicompat) implement the Model interface from this
// package so callers remain decoupled from vendor SDKs.
package model
