package scheduler

import (
	"fmt"
	"strings"
)

// ErrCycle is returned by Build when a schedule's Before/After/Set
// constraints form a cycle. Systems lists every system Build could not
// place, sorted by name — not necessarily the minimal cycle, but always a
// superset of one.
type ErrCycle struct {
	Systems []string
}

func (e ErrCycle) Error() string {
	return fmt.Sprintf("scheduler: cyclic dependency among systems [%s]", strings.Join(e.Systems, ", "))
}
