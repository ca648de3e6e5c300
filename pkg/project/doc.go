// Package project manages the migrations root on disk: creating it during
// setup and scaffolding new migration units.
//
// # Project Structure
//
//	ch_migrations/
//	├── chm.toml                                # Connection config written by setup
//	├── 2024-01-01-000000_create_events/
//	│   ├── up.sql                              # Forward statements
//	│   └── down.sql                            # Backward statements
//	└── 2024-01-02-093000_add_events_ttl/
//	    ├── up.sql
//	    └── down.sql
//
// # Usage Example
//
//	proj := project.New("ch_migrations")
//
//	cfg := &config.Config{URL: "localhost:9000", Database: "analytics"}
//	if err := proj.Initialize(cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	unit, err := proj.GenerateMigration("create_events", time.Now())
//	if err != nil {
//		log.Fatal(err)
//	}
package project
