package world

import "github.com/TheBitDrifter/table"

// Config holds process-wide configuration for the table-backed storage
// layer and debug assertions.
var Config config

type config struct {
	tableEvents    table.TableEvents
	DebugAssertions bool
}

// SetTableEvents configures the table event callbacks forwarded to every
// archetype's underlying table.Table.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}
