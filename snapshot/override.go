package snapshot

import "context"

type overrideKey struct {
	baseTableName string
}

//WithOverride returns a context where the active table name of dataset resolves to name.
//Only code receiving the returned context (or its children) observes the override
func WithOverride(ctx context.Context, dataset *Dataset, name string) context.Context {
	return context.WithValue(ctx, overrideKey{baseTableName: dataset.BaseTableName()}, name)
}

//OverrideFrom returns the overridden active table name of dataset carried by ctx
func OverrideFrom(ctx context.Context, dataset *Dataset) (string, bool) {
	name, ok := ctx.Value(overrideKey{baseTableName: dataset.BaseTableName()}).(string)
	return name, ok
}

//ActiveNameReader reads the currently active table name of a dataset from its storage
type ActiveNameReader interface {
	ActiveName(ctx context.Context) string
}

//ResolveActiveName returns the table that reads and writes of dataset must address in ctx:
//the working table inside a version session, the active table from the switch pointer otherwise
func ResolveActiveName(ctx context.Context, dataset *Dataset, reader ActiveNameReader) string {
	if name, ok := OverrideFrom(ctx, dataset); ok {
		return name
	}

	return reader.ActiveName(ctx)
}
