package object

import "sync/atomic"

// TimeStamp is a monotonic source of modification times. Every value it
// hands out is strictly greater than every value handed out before.
type TimeStamp struct {
	last atomic.Uint64
}

// Next returns a fresh modification time.
func (ts *TimeStamp) Next() uint64 {
	return ts.last.Add(1)
}

// Last returns the most recently issued time, or 0 if none was issued.
func (ts *TimeStamp) Last() uint64 {
	return ts.last.Load()
}

// globalTimeStamp is shared by all objects so that modification times of
// different objects can be compared.
var globalTimeStamp TimeStamp

// Now returns the most recent modification time issued to any object.
func Now() uint64 {
	return globalTimeStamp.Last()
}
