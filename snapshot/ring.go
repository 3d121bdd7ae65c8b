package snapshot

import (
	"github.com/jitsucom/snapshotview/errorj"
)

//Ring returns ordered table version names starting with the base table: [base, base_a, base_b, ...]
func (d *Dataset) Ring() []string {
	ring := make([]string, len(d.ring))
	copy(ring, d.ring)
	return ring
}

//SuffixedNames returns the ring without the base table
func (d *Dataset) SuffixedNames() []string {
	return d.Ring()[1:]
}

//Contains returns true if name is one of the ring table names
func (d *Dataset) Contains(name string) bool {
	return d.indexOf(name) >= 0
}

//Successor returns the next name after name in the cyclic ring order.
//Returns errorj.UnknownVersionNameError if name isn't in the ring
func (d *Dataset) Successor(name string) (string, error) {
	i := d.indexOf(name)
	if i < 0 {
		return "", errorj.UnknownVersionNameError.New("table %q isn't a version of dataset %q (ring: %v)", name, d.baseTableName, d.ring).
			WithProperty(errorj.Dataset, d.baseTableName)
	}

	return d.ring[(i+1)%len(d.ring)], nil
}

func (d *Dataset) indexOf(name string) int {
	for i, n := range d.ring {
		if n == name {
			return i
		}
	}

	return -1
}
