package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing/fstest"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/config"
	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/pseudomuto/chm/pkg/migrator"
)

// unitImage is the scaffold written for every generated unit.
var unitImage = fstest.MapFS{
	consts.UpFile:   {Data: []byte{}},
	consts.DownFile: {Data: []byte{}},
}

// Project is a migrations root on disk.
type Project struct {
	root string
}

// New creates a Project for the migrations root at path. The directory does
// not need to exist yet.
//
// Example:
//
//	proj := project.New("ch_migrations")
//	if err := proj.Initialize(&config.Config{URL: "localhost:9000"}); err != nil {
//		log.Fatal(err)
//	}
//
//	unit, err := proj.GenerateMigration("create_events", time.Now())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println("created", unit.ID())
func New(path string) *Project {
	return &Project{root: path}
}

// Root returns the migrations directory.
func (p *Project) Root() string {
	return p.root
}

// Exists reports whether the migrations root exists and is a directory.
func (p *Project) Exists() bool {
	info, err := os.Stat(p.root)
	return err == nil && info.IsDir()
}

// ConfigPath returns where Initialize persists the connection config.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.root, consts.ConfigFile)
}

// Initialize creates the migrations root and persists cfg to chm.toml inside
// it. Unlike the rest of the tool it is not idempotent: an existing root is
// an error so that a previous setup is never overwritten.
func (p *Project) Initialize(cfg *config.Config) error {
	if _, err := os.Stat(p.root); err == nil {
		return errors.Wrapf(migrator.ErrBadInput, "migrations directory %s already exists", p.root)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", p.root)
	}

	if err := os.MkdirAll(p.root, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", p.root)
	}

	return cfg.Save(p.ConfigPath())
}

// GenerateMigration creates an empty unit named name, versioned by now (UTC).
func (p *Project) GenerateMigration(name string, now time.Time) (*migrator.Unit, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	if !p.Exists() {
		return nil, errors.Wrapf(migrator.ErrBadInput, "migrations directory %s does not exist. Run chm setup first", p.root)
	}

	version := migrator.FormatVersion(now)
	id := version + "_" + name

	// Mkdir (not MkdirAll) so two units generated within the same second collide loudly
	dir := filepath.Join(p.root, id)
	if err := os.Mkdir(dir, consts.ModeDir); err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(migrator.ErrBadInput, "migration %s already exists", id)
		}
		return nil, errors.Wrapf(err, "failed to create directory %s", dir)
	}

	for file, entry := range unitImage {
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, entry.Data, consts.ModeFile); err != nil {
			return nil, errors.Wrapf(err, "failed to write file %s", path)
		}
	}

	return migrator.NewUnit(version, name, os.DirFS(p.root), id)
}

// ValidateName checks that name can be used as the suffix of a unit
// directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Wrap(migrator.ErrBadInput, "migration name is required")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return errors.Wrapf(migrator.ErrBadInput, "invalid migration name %q: must not contain path separators", name)
	case strings.HasPrefix(name, "."):
		return errors.Wrapf(migrator.ErrBadInput, "invalid migration name %q: must not start with '.'", name)
	case strings.ContainsFunc(name, unicode.IsSpace):
		return errors.Wrapf(migrator.ErrBadInput, "invalid migration name %q: must not contain whitespace", name)
	}

	return nil
}
