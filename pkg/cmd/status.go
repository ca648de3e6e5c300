package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/pseudomuto/chm/pkg/runner"
)

const ranAtLayout = "2006-01-02 15:04:05 MST"

func printStatus(w io.Writer, root string, status *runner.Status) {
	fmt.Fprintf(w, "Migrations in %s\n", root)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Applied:")
	if len(status.Applied) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, applied := range status.Applied {
		fmt.Fprintf(w, "  %s  ran at %s\n", applied.Unit.ID(), formatRanAt(applied.Record.RanAt))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pending:")
	if len(status.Pending) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, unit := range status.Pending {
		fmt.Fprintf(w, "  %s\n", unit.ID())
	}

	if len(status.Missing) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Missing locally (run and revert are blocked until restored):")
		for _, record := range status.Missing {
			fmt.Fprintf(w, "  %s  ran at %s\n", record.Version, formatRanAt(record.RanAt))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d applied, %d pending, %d missing\n",
		len(status.Applied),
		len(status.Pending),
		len(status.Missing),
	)
}

func formatRanAt(t time.Time) string {
	return t.UTC().Format(ranAtLayout)
}
