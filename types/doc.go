// Package types provides unified type definitions for the CoachFlow engine:
// the domain enums (experts, readiness states, response styles, resolution
// methods), the memory and retrieval records, the per-request router context,
// and the structured error taxonomy shared by every component.
package types
