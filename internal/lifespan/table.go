// Package lifespan holds the life expectancy statistics table.
package lifespan

import (
	"fmt"

	"github.com/verte-zerg/life-progress/internal/model"
)

// CommonName is the key of the world-average entry.
const CommonName = "Common"

// Row is a single named table entry.
type Row struct {
	Name string
	Info model.CountryInfo
}

// Table maps country names to expectancy figures. It keeps the order rows were
// loaded in and is never mutated after NewTable returns.
type Table struct {
	names []string
	rows  map[string]model.CountryInfo
}

// NewTable builds a table from rows. Names must be unique and non-empty.
func NewTable(rows []Row) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(rows)),
		rows:  make(map[string]model.CountryInfo, len(rows)),
	}
	for _, row := range rows {
		if row.Name == "" {
			return nil, fmt.Errorf("country name is empty")
		}
		if _, ok := t.rows[row.Name]; ok {
			return nil, fmt.Errorf("duplicate country %q", row.Name)
		}
		t.names = append(t.names, row.Name)
		t.rows[row.Name] = row.Info
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.names)
}

// Names returns the country names in table order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Lookup returns the entry stored under the exact name.
func (t *Table) Lookup(name string) (model.CountryInfo, bool) {
	info, ok := t.rows[name]
	return info, ok
}
