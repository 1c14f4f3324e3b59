package object

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrLifecycle is wrapped by the panics raised on reference count misuse.
var ErrLifecycle = errors.New("object lifecycle violation")

// Lifecycle is implemented by shared-ownership objects.
type Lifecycle interface {
	Acquire()
	Release()
	ReferenceCount() int32
}

// ModificationTracker is implemented by objects whose changes drive
// re-execution of dependent computation.
type ModificationTracker interface {
	Modified()
	ModificationTime() uint64
}

// Debuggable is implemented by objects with a per-instance debug flag.
type Debuggable interface {
	SetDebug(flag bool)
	Debug() bool
}

// Interface is the full capability set of Object.
type Interface interface {
	Lifecycle
	ModificationTracker
	Debuggable
}

var _ Interface = (*Object)(nil)

// Object is the reference-counted, modification-tracked base type.
// The zero value is not usable; call Init (or use New).
type Object struct {
	refs         atomic.Int32
	destroyed    atomic.Bool
	debug        atomic.Bool
	mtime        atomic.Uint64
	deleteMethod atomic.Pointer[func()]
	class        string
}

// New returns a standalone Object with a reference count of 1.
func New() *Object {
	o := &Object{}
	o.Init("Object")
	return o
}

// Init prepares an embedded Object: reference count 1, modification time 0,
// debug off. class names the embedding type in diagnostics.
func (o *Object) Init(class string) {
	o.class = class
	o.refs.Store(1)
	o.destroyed.Store(false)
	o.debug.Store(false)
	o.mtime.Store(0)
	o.deleteMethod.Store(nil)
}

// ClassName returns the name given to Init.
func (o *Object) ClassName() string {
	return o.class
}

// Acquire registers another holder of the object.
func (o *Object) Acquire() {
	n := o.refs.Add(1)
	if n <= 1 {
		panic(fmt.Errorf("%w: acquire of destroyed %s (count %d)", ErrLifecycle, o.class, n))
	}
}

// Release drops one holder. The call that brings the count to zero runs the
// delete method and marks the object destroyed. Releasing an object whose
// count is already zero panics.
func (o *Object) Release() {
	n := o.refs.Add(-1)
	if n < 0 {
		panic(fmt.Errorf("%w: release of %s with count %d", ErrLifecycle, o.class, n+1))
	}
	if n == 0 {
		o.destroy()
	}
}

// ReferenceCount returns the current number of holders.
func (o *Object) ReferenceCount() int32 {
	return o.refs.Load()
}

// SetReferenceCount overwrites the count. Use with care: setting it to zero
// destroys the object.
func (o *Object) SetReferenceCount(n int32) {
	if n < 0 {
		panic(fmt.Errorf("%w: negative reference count %d for %s", ErrLifecycle, n, o.class))
	}
	o.refs.Store(n)
	if n == 0 {
		o.destroy()
	}
}

func (o *Object) destroy() {
	if !o.destroyed.CompareAndSwap(false, true) {
		panic(fmt.Errorf("%w: %s destroyed twice", ErrLifecycle, o.class))
	}
	o.Debugf("destroying")
	if fn := o.deleteMethod.Swap(nil); fn != nil {
		(*fn)()
	}
}

// Destroyed reports whether the reference count has reached zero.
func (o *Object) Destroyed() bool {
	return o.destroyed.Load()
}

// SetDeleteMethod installs a callback run once when the object is destroyed.
// Passing nil removes it.
func (o *Object) SetDeleteMethod(fn func()) {
	if fn == nil {
		o.deleteMethod.Store(nil)
		return
	}
	o.deleteMethod.Store(&fn)
}

// Modified advances the modification time to a value greater than any time
// issued so far to any object.
func (o *Object) Modified() {
	o.mtime.Store(globalTimeStamp.Next())
}

// ModificationTime returns the time of the last Modified call, 0 if none.
func (o *Object) ModificationTime() uint64 {
	return o.mtime.Load()
}

// SetDebug sets the instance debug flag.
func (o *Object) SetDebug(flag bool) {
	o.debug.Store(flag)
}

// Debug returns the instance debug flag.
func (o *Object) Debug() bool {
	return o.debug.Load()
}

// DebugOn turns the instance debug flag on.
func (o *Object) DebugOn() { o.SetDebug(true) }

// DebugOff turns the instance debug flag off.
func (o *Object) DebugOff() { o.SetDebug(false) }

// Debugf logs a debug message when both the instance debug flag and the
// global warning display are on.
func (o *Object) Debugf(format string, args ...interface{}) {
	if !o.Debug() || !GlobalWarningDisplay() {
		return
	}
	zap.L().Debug(fmt.Sprintf(format, args...),
		zap.String("object", o.class),
		zap.Int32("refs", o.ReferenceCount()),
		zap.Uint64("mtime", o.ModificationTime()))
}

// Warnf logs a warning when the global warning display is on.
func (o *Object) Warnf(format string, args ...interface{}) {
	if !GlobalWarningDisplay() {
		return
	}
	zap.L().Warn(fmt.Sprintf(format, args...), zap.String("object", o.class))
}
