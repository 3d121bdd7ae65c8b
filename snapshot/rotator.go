package snapshot

import (
	"context"

	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/metrics"
	"github.com/jitsucom/snapshotview/timestamp"
)

//Rotator promotes the working table to active and prepares the vacated ring slot as the new working table.
//Rotator keeps no state: the active table is always read from the switch table
type Rotator struct {
	dataset *Dataset
	storage Storage
	pointer *SwitchPointer
}

func NewRotator(dataset *Dataset, storage Storage) *Rotator {
	return &Rotator{dataset: dataset, storage: storage, pointer: NewSwitchPointer(dataset, storage)}
}

//ActiveName returns the active table name read from the switch table
func (r *Rotator) ActiveName(ctx context.Context) string {
	return r.pointer.Read(ctx)
}

//WorkingName returns the successor of the active table in the ring
func (r *Rotator) WorkingName(ctx context.Context) (string, error) {
	return r.dataset.Successor(r.pointer.Read(ctx))
}

//EnsureSlot clones the base table schema into name if the table doesn't exist.
//The base table is the schema source and is never created here
func (r *Rotator) EnsureSlot(ctx context.Context, name string) error {
	if name == r.dataset.BaseTableName() {
		return nil
	}

	exists, err := r.storage.TableExists(ctx, name)
	if err != nil {
		return err
	}
	//don't execute ddl unless necessary
	if exists {
		return nil
	}

	return r.storage.CloneTable(ctx, r.dataset.BaseTableName(), name)
}

//Rotate makes the working table active and recreates the new working table from the base table schema.
//
//The switch update is committed first, in its own transaction or in the caller's one if ctx carries it.
//Preparation of the tables runs after it statement by statement: a failure there leaves the new active
//table promoted and the next rotation recreates whatever slot is missing
func (r *Rotator) Rotate(ctx context.Context) (err error) {
	started := timestamp.Now()
	defer func() {
		metrics.Rotation(r.dataset.BaseTableName(), timestamp.Now().Sub(started), err)
	}()

	previousActive := r.pointer.Read(ctx)
	newActive, err := r.dataset.Successor(previousActive)
	if err != nil {
		return err
	}

	if r.storage.NonTransactionalDDL() && r.storage.InTransaction(ctx) {
		logging.Warnf("[%s] rotation inside a transaction on %s: DDL statements after the switch will commit the surrounding transaction", r.dataset, r.storage.Type())
	}

	if err = r.pointer.Set(ctx, newActive); err != nil {
		return errorj.RotationError.Wrap(err, "failed to rotate %s", r.dataset).
			WithProperty(errorj.Dataset, r.dataset.BaseTableName())
	}

	newWorking, err := r.prepareWorking(ctx, newActive)
	if err != nil {
		return errorj.RotationError.Wrap(err, "failed to prepare %s after switching %s -> %s", r.dataset, previousActive, newActive).
			WithProperty(errorj.Dataset, r.dataset.BaseTableName())
	}

	logging.Infof("[%s] rotated: active %s -> %s, working: %s", r.dataset, previousActive, newActive, newWorking)
	return nil
}

//prepareWorking ensures the new active table exists and empties the slot vacated by the switch.
//The base table is only truncated, any other slot is dropped and recreated
func (r *Rotator) prepareWorking(ctx context.Context, newActive string) (string, error) {
	if err := r.EnsureSlot(ctx, newActive); err != nil {
		return "", err
	}

	newWorking, err := r.WorkingName(ctx)
	if err != nil {
		return "", err
	}

	if newWorking == r.dataset.BaseTableName() {
		return newWorking, r.storage.Truncate(ctx, newWorking)
	}

	return newWorking, r.storage.CloneTable(ctx, r.dataset.BaseTableName(), newWorking)
}
