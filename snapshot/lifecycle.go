package snapshot

import (
	"context"
	"regexp"

	"github.com/hashicorp/go-multierror"
	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/logging"
)

//Lifecycle creates all dataset tables once and removes them when the dataset leaves the scheme
type Lifecycle struct {
	dataset *Dataset
	storage Storage
	rotator *Rotator
	pointer *SwitchPointer
}

func NewLifecycle(dataset *Dataset, storage Storage) *Lifecycle {
	rotator := NewRotator(dataset, storage)
	return &Lifecycle{dataset: dataset, storage: storage, rotator: rotator, pointer: rotator.pointer}
}

//Materialize creates the switch table and every suffixed ring table if they don't exist.
//The base table must exist already
func (l *Lifecycle) Materialize(ctx context.Context) error {
	if err := l.pointer.EnsureBacking(ctx); err != nil {
		return errorj.Decorate(err, "failed to create switch table of %s", l.dataset)
	}

	for _, name := range l.dataset.SuffixedNames() {
		if err := l.rotator.EnsureSlot(ctx, name); err != nil {
			return errorj.Decorate(err, "failed to create version table %s", name)
		}
	}

	return nil
}

//Decommission moves the active data into the base table and drops every suffixed table and the switch table.
//Afterwards the base table is an ordinary table
func (l *Lifecycle) Decommission(ctx context.Context) error {
	active := l.pointer.Read(ctx)
	if active != l.dataset.BaseTableName() {
		logging.Infof("[%s] moving active version %s into base table", l.dataset, active)
		if err := l.storage.Truncate(ctx, l.dataset.BaseTableName()); err != nil {
			return err
		}
		if err := l.storage.CopyRows(ctx, active, l.dataset.BaseTableName()); err != nil {
			return err
		}
	}

	for _, name := range l.dataset.SuffixedNames() {
		if err := l.storage.DropTableIfExists(ctx, name); err != nil {
			return err
		}
	}

	return l.storage.DropTableIfExists(ctx, l.dataset.SwitchTableName())
}

//SlotStatus is a ring table with existence flag
type SlotStatus struct {
	Name    string `json:"name"`
	Exists  bool   `json:"exists"`
	Active  bool   `json:"active"`
	Working bool   `json:"working"`
}

//Status is a dataset state snapshot
type Status struct {
	Dataset     string       `json:"dataset"`
	Active      string       `json:"active"`
	Working     string       `json:"working"`
	SwitchTable string       `json:"switch_table"`
	Slots       []SlotStatus `json:"slots"`
}

//Status reads the switch table and checks existence of every ring table
func (l *Lifecycle) Status(ctx context.Context) (*Status, error) {
	active := l.pointer.Read(ctx)
	working, err := l.dataset.Successor(active)
	if err != nil {
		return nil, err
	}

	status := &Status{Dataset: l.dataset.BaseTableName(), Active: active, Working: working, SwitchTable: l.dataset.SwitchTableName()}
	for _, name := range l.dataset.Ring() {
		exists, err := l.storage.TableExists(ctx, name)
		if err != nil {
			return nil, err
		}
		status.Slots = append(status.Slots, SlotStatus{Name: name, Exists: exists, Active: name == active, Working: name == working})
	}

	return status, nil
}

//DropAll drops every table of the base table naming scheme (base_<letter> and base_switch) found in storage.
//It doesn't require a Dataset: used for teardown of abandoned datasets. All drop failures are returned together
func DropAll(ctx context.Context, storage Storage, baseTableName string) error {
	tables, err := storage.ListTables(ctx)
	if err != nil {
		return err
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(baseTableName) + "_([a-z]|switch)$")
	var matched int
	var result *multierror.Error
	for _, table := range tables {
		if !pattern.MatchString(table) {
			continue
		}
		matched++
		if err := storage.DropTableIfExists(ctx, table); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		logging.Infof("[%s] dropped %s", baseTableName, table)
	}

	if matched == 0 {
		logging.Warnf("[%s] matches no snapshot view tables", baseTableName)
	}

	return result.ErrorOrNil()
}
