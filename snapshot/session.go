package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/locks"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/metrics"
)

const (
	defaultLockTimeout = time.Minute
	lockPrefix         = "snapshot_view_"
)

type outcomeKind int

const (
	completed outcomeKind = iota
	savePartial
	failed
)

func (k outcomeKind) String() string {
	switch k {
	case completed:
		return "completed"
	case savePartial:
		return "save_partial"
	default:
		return "failed"
	}
}

//Outcome is a result of a unit of work: Completed, SavePartial or Failed
type Outcome struct {
	kind  outcomeKind
	value interface{}
	err   error
}

//Completed means the unit finished: the working table is promoted and value is returned to the caller
func Completed(value interface{}) Outcome {
	return Outcome{kind: completed, value: value}
}

//SavePartial means the unit failed but what has been written must be kept: the working table is promoted
//and cause (if any) is returned to the caller
func SavePartial(cause error) Outcome {
	return Outcome{kind: savePartial, err: cause}
}

//Failed means the unit failed: the working table isn't promoted and err is returned to the caller as is
func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unit of work failed")
	}
	return Outcome{kind: failed, err: err}
}

//OutcomeOf maps a plain (value, error) result: nil error is Completed, *SaveWork error is SavePartial
//with its cause, any other error is Failed
func OutcomeOf(value interface{}, err error) Outcome {
	if err == nil {
		return Completed(value)
	}

	var saveWork *SaveWork
	if errors.As(err, &saveWork) {
		return SavePartial(saveWork.Cause)
	}

	return Failed(err)
}

func (o Outcome) String() string {
	return o.kind.String()
}

//SaveWork is returned by a session when a unit asked to keep partial work without a cause.
//Units may return it through OutcomeOf to request SavePartial
type SaveWork struct {
	Cause error
}

func (sw *SaveWork) Error() string {
	if sw.Cause != nil {
		return sw.Cause.Error()
	}

	return "SaveWork"
}

func (sw *SaveWork) Unwrap() error {
	return sw.Cause
}

//Unit is a caller supplied unit of work. ctx resolves the dataset active table name to the working table
type Unit func(ctx context.Context) Outcome

//SessionOption configures a Session
type SessionOption func(*Session)

//WithLocks makes sessions of one dataset mutually exclusive using locks created by factory
func WithLocks(factory locks.LockFactory, timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.lockFactory = factory
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

//Session runs units of work against the working table and decides whether to promote it
type Session struct {
	dataset *Dataset
	storage Storage
	rotator *Rotator

	lockFactory locks.LockFactory
	lockTimeout time.Duration
}

func NewSession(dataset *Dataset, storage Storage, opts ...SessionOption) *Session {
	s := &Session{
		dataset:     dataset,
		storage:     storage,
		rotator:     NewRotator(dataset, storage),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

//Run runs unit with an empty working table visible as the active one (in unit ctx only).
//Completed and SavePartial outcomes promote the working table, Failed doesn't
func (s *Session) Run(ctx context.Context, unit Unit) (interface{}, error) {
	return s.run(ctx, false, unit)
}

//RunUpdated is like Run but the working table starts with a copy of the active table rows
func (s *Session) RunUpdated(ctx context.Context, unit Unit) (interface{}, error) {
	return s.run(ctx, true, unit)
}

//Rotate promotes the working table as is. It takes the dataset lock like Run does
func (s *Session) Rotate(ctx context.Context) error {
	ctx, unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.rotator.Rotate(ctx)
}

//LockName returns the name of the lock which serializes sessions of dataset
func LockName(dataset *Dataset) string {
	return lockPrefix + dataset.BaseTableName()
}

//lockHeldKey marks ctx of a session which holds the dataset lock
type lockHeldKey struct {
	name string
}

//lock takes the dataset lock unless ctx comes from a session already holding it. Locks aren't reentrant:
//a nested session of the same dataset would wait for the enclosing one until the timeout
func (s *Session) lock(ctx context.Context) (context.Context, func(), error) {
	if s.lockFactory == nil {
		return ctx, func() {}, nil
	}

	lockName := LockName(s.dataset)
	key := lockHeldKey{name: lockName}
	if held, _ := ctx.Value(key).(bool); held {
		logging.Debugf("[%s] lock %s is held by the enclosing session", s.dataset, lockName)
		return ctx, func() {}, nil
	}

	lock := s.lockFactory.CreateLock(lockName)
	if err := lock.Lock(s.lockTimeout); err != nil {
		return nil, nil, errorj.LockError.Wrap(err, "failed to lock %s", lockName).
			WithProperty(errorj.Dataset, s.dataset.BaseTableName())
	}

	return context.WithValue(ctx, key, true), func() { lock.Unlock() }, nil
}

func (s *Session) run(ctx context.Context, update bool, unit Unit) (interface{}, error) {
	ctx, unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	working, err := s.rotator.WorkingName(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.rotator.EnsureSlot(ctx, working); err != nil {
		return nil, errorj.Decorate(err, "failed to prepare working table %s", working)
	}
	if err := s.storage.Truncate(ctx, working); err != nil {
		return nil, errorj.Decorate(err, "failed to truncate working table %s", working)
	}

	if update {
		active := s.rotator.ActiveName(ctx)
		if err := s.storage.CopyRows(ctx, active, working); err != nil {
			return nil, errorj.Decorate(err, "failed to copy %s rows into working table %s", active, working)
		}
	}

	//the override lives in unit ctx only: it is gone on every exit path
	outcome := s.invoke(WithOverride(ctx, s.dataset, working), unit)
	metrics.Session(s.dataset.BaseTableName(), outcome.String())

	switch outcome.kind {
	case completed:
		if err := s.rotator.Rotate(ctx); err != nil {
			return nil, err
		}
		return outcome.value, nil
	case savePartial:
		rotateErr := s.rotator.Rotate(ctx)
		if outcome.err != nil {
			logging.Warnf("[%s] saving partial work of %s: %v", s.dataset, working, outcome.err)
			if rotateErr != nil {
				return nil, errorj.Group(rotateErr, outcome.err)
			}
			return nil, outcome.err
		}
		if rotateErr != nil {
			return nil, rotateErr
		}
		return nil, &SaveWork{}
	default:
		logging.Debugf("[%s] unit of work failed, working table %s isn't promoted: %v", s.dataset, working, outcome.err)
		return nil, outcome.err
	}
}

func (s *Session) invoke(ctx context.Context, unit Unit) Outcome {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("[%s] unit of work panicked, working table isn't promoted: %v", s.dataset, r)
			metrics.Session(s.dataset.BaseTableName(), failed.String())
			panic(r)
		}
	}()

	return unit(ctx)
}
