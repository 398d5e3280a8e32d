package resources

import (
	"sync/atomic"

	"github.com/minios-linux/cbres/propfile"
)

type slot = atomic.Pointer[string]

// Cache holds loaded resources. Each slot is filled at most once per
// successful load and never cleared. The zero value is empty and ready to
// use. A Cache must not be copied after first use.
type Cache struct {
	properties atomic.Pointer[propfile.File]

	createTables              slot
	dropTables                slot
	insertFilters             slot
	insertFiltersLocalization slot
	enableDefaultFilters      slot
}

// Loaded lists the names of the resources currently cached.
func (c *Cache) Loaded() []string {
	var names []string
	if c.properties.Load() != nil {
		names = append(names, NameProperties)
	}
	for _, s := range []struct {
		name string
		slot *slot
	}{
		{NameCreateTables, &c.createTables},
		{NameDropTables, &c.dropTables},
		{NameInsertFilters, &c.insertFilters},
		{NameInsertFiltersLocalization, &c.insertFiltersLocalization},
		{NameEnableDefaultFilters, &c.enableDefaultFilters},
	} {
		if s.slot.Load() != nil {
			names = append(names, s.name)
		}
	}
	return names
}
