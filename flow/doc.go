// Package flow implements the two-step registration conversation: a member
// starts a register or unregister flow, the gateway presents the offered
// platforms as a multi-select, and the member's selection commits at most once.
//
// Each Flow is an explicit state machine guarded by its own mutex. The Manager
// owns the pending flows, hands out ids, routes Selection events and prunes
// flows that outlive their TTL.
package flow
