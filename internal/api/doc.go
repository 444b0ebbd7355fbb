// Package api exposes external interfaces for mail triage: synchronous
// processing, asynchronous inbox submission, job inspection, and health and
// metrics endpoints.
package api
