// Package activity persists the gamerdb audit trail. The Repository implements
// both types.ActivitySink (writes from commands) and types.ActivityRepository
// (paged reads for the activity feed query). Payloads are masked through
// go-masker before they reach storage.
package activity
