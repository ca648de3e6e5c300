package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/pseudomuto/chm/pkg/runner"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestPrintStatus(t *testing.T) {
	unit := func(version, name string) *migrator.Unit {
		u, err := migrator.NewUnit(version, name, nil, "")
		require.NoError(t, err)
		return u
	}

	tests := []struct {
		name   string
		status *runner.Status
		golden string
	}{
		{
			name: "applied pending and missing",
			status: &runner.Status{
				Applied: []runner.AppliedUnit{
					{
						Unit:   unit("2024-01-01-000000", "create_events"),
						Record: migrator.AppliedRecord{Version: "2024-01-01-000000", RanAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
					},
				},
				Pending: migrator.Catalog{unit("2024-01-02-000000", "add_ttl")},
				Missing: []migrator.AppliedRecord{
					{Version: "2024-01-03-000000", RanAt: time.Date(2024, 2, 2, 12, 30, 0, 0, time.UTC)},
				},
			},
			golden: "status.golden",
		},
		{
			name:   "empty",
			status: &runner.Status{},
			golden: "status_empty.golden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printStatus(&buf, "ch_migrations", tt.status)
			golden.Assert(t, buf.String(), tt.golden)
		})
	}
}
