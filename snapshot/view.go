package snapshot

import "context"

//View is a snapshot view over one dataset: readers query the active table,
//writers fill the working table inside NewVersion/UpdatedVersion
type View struct {
	dataset   *Dataset
	rotator   *Rotator
	session   *Session
	lifecycle *Lifecycle
}

func New(storage Storage, dataset *Dataset, opts ...SessionOption) *View {
	return &View{
		dataset:   dataset,
		rotator:   NewRotator(dataset, storage),
		session:   NewSession(dataset, storage, opts...),
		lifecycle: NewLifecycle(dataset, storage),
	}
}

func (v *View) Dataset() *Dataset {
	return v.dataset
}

//ActiveName returns the active table name read from the switch table
func (v *View) ActiveName(ctx context.Context) string {
	return v.rotator.ActiveName(ctx)
}

func (v *View) WorkingName(ctx context.Context) (string, error) {
	return v.rotator.WorkingName(ctx)
}

//Resolve returns the table to address in ctx: the working table inside a unit of work, the active one otherwise
func (v *View) Resolve(ctx context.Context) string {
	return ResolveActiveName(ctx, v.dataset, v.rotator)
}

//NewVersion runs unit against an empty working table and promotes it (see Session.Run)
func (v *View) NewVersion(ctx context.Context, unit Unit) (interface{}, error) {
	return v.session.Run(ctx, unit)
}

//UpdatedVersion runs unit against a copy of the active table and promotes it (see Session.RunUpdated)
func (v *View) UpdatedVersion(ctx context.Context, unit Unit) (interface{}, error) {
	return v.session.RunUpdated(ctx, unit)
}

//Rotate promotes the working table without a unit of work
func (v *View) Rotate(ctx context.Context) error {
	return v.session.Rotate(ctx)
}

func (v *View) Materialize(ctx context.Context) error {
	return v.lifecycle.Materialize(ctx)
}

func (v *View) Decommission(ctx context.Context) error {
	return v.lifecycle.Decommission(ctx)
}

func (v *View) Status(ctx context.Context) (*Status, error) {
	return v.lifecycle.Status(ctx)
}
