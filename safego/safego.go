package safego

import (
	"time"

	"go.uber.org/atomic"
)

const defaultRestartTimeout = 2 * time.Second

type RecoverHandler func(value interface{})

//GlobalRecoverHandler is called with the recovered value of every panic in goroutines started by this package
var GlobalRecoverHandler RecoverHandler = func(value interface{}) {}

//Execution is a goroutine guarded from panics. A zero restart timeout means no restart after panic
type Execution struct {
	f              func()
	restartTimeout *atomic.Duration
}

//Run starts f in a new goroutine. A panic is passed to GlobalRecoverHandler and f isn't restarted
func Run(f func()) *Execution {
	return start(f, 0)
}

//RunWithRestart starts f in a new goroutine and restarts it 2 seconds after every panic
func RunWithRestart(f func()) *Execution {
	return start(f, defaultRestartTimeout)
}

//WithRestartTimeout overrides the pause before restart
func (exec *Execution) WithRestartTimeout(timeout time.Duration) *Execution {
	exec.restartTimeout.Store(timeout)
	return exec
}

func start(f func(), restartTimeout time.Duration) *Execution {
	exec := &Execution{f: f, restartTimeout: atomic.NewDuration(restartTimeout)}
	go func() {
		for exec.runOnce() {
			time.Sleep(exec.restartTimeout.Load())
		}
	}()

	return exec
}

//runOnce returns true if f panicked and must be restarted
func (exec *Execution) runOnce() (restart bool) {
	defer func() {
		if r := recover(); r != nil {
			GlobalRecoverHandler(r)
			restart = exec.restartTimeout.Load() > 0
		}
	}()

	exec.f()
	return false
}
