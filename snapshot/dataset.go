package snapshot

import (
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jitsucom/snapshotview/errorj"
)

const (
	//DefaultHistoricalVersionCount is the number of retired versions kept next to the active one
	DefaultHistoricalVersionCount = 2

	alphabet        = "abcdefghijklmnopqrstuvwxyz"
	switchSuffix    = "_switch"
	maxVersionCount = len(alphabet)
)

//Dataset is a logical dataset identified by its base table name.
//It is immutable: changing historical versions count requires a new Dataset and re-materialization
type Dataset struct {
	baseTableName          string
	historicalVersionCount int
	ring                   []string
}

//DatasetOption configures a Dataset on creation
type DatasetOption func(*Dataset)

//WithHistoricalVersionCount overrides DefaultHistoricalVersionCount
func WithHistoricalVersionCount(count int) DatasetOption {
	return func(d *Dataset) {
		d.historicalVersionCount = count
	}
}

//NewDataset returns a validated Dataset with the precomputed versions ring
func NewDataset(baseTableName string, opts ...DatasetOption) (*Dataset, error) {
	d := &Dataset{baseTableName: strings.TrimSpace(baseTableName), historicalVersionCount: DefaultHistoricalVersionCount}
	for _, opt := range opts {
		opt(d)
	}

	if d.baseTableName == "" {
		return nil, errorj.ConfigurationError.New("base table name is required")
	}
	if d.historicalVersionCount < 1 || d.historicalVersionCount > maxVersionCount {
		return nil, errorj.ConfigurationError.New("historical version count must be in [1, %d], got: %d", maxVersionCount, d.historicalVersionCount).
			WithProperty(errorj.Dataset, d.baseTableName)
	}

	d.ring = make([]string, 0, d.historicalVersionCount+1)
	d.ring = append(d.ring, d.baseTableName)
	for i := 0; i < d.historicalVersionCount; i++ {
		d.ring = append(d.ring, d.baseTableName+"_"+alphabet[i:i+1])
	}

	return d, nil
}

//TableNameForModel returns snake cased table name for a model name e.g. UserEvent -> user_event
func TableNameForModel(model string) string {
	return strcase.ToSnake(strings.TrimSpace(model))
}

func (d *Dataset) BaseTableName() string {
	return d.baseTableName
}

func (d *Dataset) HistoricalVersionCount() int {
	return d.historicalVersionCount
}

//SwitchTableName returns name of the table with a single row holding the active table name
func (d *Dataset) SwitchTableName() string {
	return d.baseTableName + switchSuffix
}

//String returns the base table name
func (d *Dataset) String() string {
	return d.baseTableName
}
