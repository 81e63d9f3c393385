// Package secrets resolves the API key used to authenticate against the
// generative-AI service. Two storage patterns are supported, mirroring how
// keys are typically kept out of source control: a dotenv-style secrets file
// (File) and process environment variables (Env). Sources are consulted in
// order; the first non-empty value wins and carries an Origin for logging.
// Key values themselves must never be logged verbatim; use Redact.
package secrets
