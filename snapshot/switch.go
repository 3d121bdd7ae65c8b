package snapshot

import (
	"context"

	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/logging"
)

//SwitchPointer is the single row indirection recording which ring table is active
type SwitchPointer struct {
	dataset *Dataset
	storage Storage
}

func NewSwitchPointer(dataset *Dataset, storage Storage) *SwitchPointer {
	return &SwitchPointer{dataset: dataset, storage: storage}
}

//Read returns the active table name. Any failure (no switch table, no row, driver error)
//means the base table is active
func (sp *SwitchPointer) Read(ctx context.Context) string {
	switchTable := sp.dataset.SwitchTableName()

	//a failed SELECT aborts the enclosing transaction in some stores, check existence first
	exists, err := sp.storage.TableExists(ctx, switchTable)
	if err != nil {
		logging.Debugf("[%s] failed to check switch table existence, base table is used as active: %v", sp.dataset, err)
		return sp.dataset.BaseTableName()
	}
	if !exists {
		return sp.dataset.BaseTableName()
	}

	value, err := sp.storage.ReadSwitch(ctx, switchTable)
	if err != nil {
		logging.Debugf("[%s] failed to read switch table, base table is used as active: %v", sp.dataset, err)
		return sp.dataset.BaseTableName()
	}
	if value == "" {
		return sp.dataset.BaseTableName()
	}

	return value
}

//Set replaces the switch table content with name: delete + insert in one transaction,
//so the switch table is never observed empty
func (sp *SwitchPointer) Set(ctx context.Context, name string) error {
	switchTable := sp.dataset.SwitchTableName()
	if err := sp.EnsureBacking(ctx); err != nil {
		return err
	}

	if err := sp.storage.WithTransaction(ctx, func(ctx context.Context) error {
		return sp.storage.WriteSwitch(ctx, switchTable, name)
	}); err != nil {
		return errorj.Decorate(err, "failed to switch active table of %s to %s", sp.dataset, name).
			WithProperty(errorj.Dataset, sp.dataset.BaseTableName())
	}

	return nil
}

//EnsureBacking creates the switch table if it doesn't exist. Existing content is never touched
func (sp *SwitchPointer) EnsureBacking(ctx context.Context) error {
	switchTable := sp.dataset.SwitchTableName()
	exists, err := sp.storage.TableExists(ctx, switchTable)
	if err != nil {
		return err
	}
	//don't execute any ddl if we don't need to
	if exists {
		return nil
	}

	return sp.storage.CreateSwitchTable(ctx, switchTable)
}
