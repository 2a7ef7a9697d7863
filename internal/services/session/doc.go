// Package session manages the lifecycle of one secure channel over one
// transport: establishment, use, proactive renegotiation before the nonce
// space runs out, and teardown.
//
// The service also implements the recommended failure posture: single
// rejected messages are dropped and surfaced as errors, a consecutive run of
// violations past a threshold is logged as a security signal, and nothing is
// ever torn down automatically on a single benign duplicate.
package session
