// Package triage contains the core orchestrator responsible for driving an
// incoming message through intent classification, planning, worker-step
// execution against a per-message context, and reply synthesis. It owns the
// pipeline's control flow and the shape of the final ActionResult.
package triage
