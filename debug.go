package weakref

// Debug introspection helpers, grounded on calltr_main.go's
// PrintNCalls/PrintCallsFilter: plain-text dumps of live table state for
// use from a debugger or an admin endpoint, not on any hot path.

import (
	"fmt"
	"io"

	"github.com/intuitivelabs/weakref/entry"
)

// DumpEntries writes one line per live referent currently tracked by
// tb, in bucket order.
func DumpEntries(w io.Writer, tb *Table) {
	n := 0
	tb.t.ForEach(func(e *entry.Entry) {
		fmt.Fprintf(w, "%6d. referent %#x out-of-line=%-5v fill=%-3d "+
			"cap=%-4d maxDisp=%d\n",
			n, e.Referent, e.OutOfLine(), e.Fill(), e.Cap(), e.MaxDisplacement())
		n++
	})
}
