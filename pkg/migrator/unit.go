package migrator

import (
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/consts"
)

type (
	// Unit is a single versioned, reversible migration. The SQL bodies are not
	// read until ForwardBody or BackwardBody is called.
	Unit struct {
		// Version is the YYYY-MM-DD-HHMMSS timestamp prefix of the directory name
		Version string

		// Name is the human readable suffix of the directory name
		Name string

		// Time is Version parsed as a UTC timestamp
		Time time.Time

		dir  string
		fsys fs.FS
	}

	// Catalog is the set of local units, sorted ascending by version.
	Catalog []*Unit
)

// NewUnit creates a Unit whose bodies live in dir within fsys.
func NewUnit(version, name string, fsys fs.FS, dir string) (*Unit, error) {
	ts, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}

	return &Unit{
		Version: version,
		Name:    name,
		Time:    ts,
		dir:     dir,
		fsys:    fsys,
	}, nil
}

// ID returns the directory name of the unit ("<version>_<name>").
func (u *Unit) ID() string {
	return u.Version + "_" + u.Name
}

// ForwardBody reads the unit's up.sql.
func (u *Unit) ForwardBody() (string, error) {
	return u.readBody(consts.UpFile)
}

// BackwardBody reads the unit's down.sql.
func (u *Unit) BackwardBody() (string, error) {
	return u.readBody(consts.DownFile)
}

func (u *Unit) readBody(file string) (string, error) {
	if u.fsys == nil {
		return "", errors.Errorf("migration %s has no filesystem", u.ID())
	}

	data, err := fs.ReadFile(u.fsys, path.Join(u.dir, file))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s for migration %s", file, u.ID())
	}

	return string(data), nil
}

// ParseVersion parses a YYYY-MM-DD-HHMMSS version string.
func ParseVersion(version string) (time.Time, error) {
	ts, err := time.Parse(consts.VersionLayout, version)
	if err != nil || ts.Format(consts.VersionLayout) != version {
		return time.Time{}, errors.Wrapf(ErrBadInput, "invalid migration version %q (expected %s)", version, consts.VersionLayout)
	}

	return ts, nil
}

// FormatVersion renders t as a unit version in UTC.
func FormatVersion(t time.Time) string {
	return t.UTC().Format(consts.VersionLayout)
}

// ParseDirName splits a unit directory name into its version and name.
func ParseDirName(dirName string) (string, string, error) {
	version, name, ok := strings.Cut(dirName, "_")
	if !ok || version == "" || name == "" {
		return "", "", errors.Wrapf(ErrBadInput, "invalid migration directory %q (expected <version>_<name>)", dirName)
	}

	if _, err := ParseVersion(version); err != nil {
		return "", "", errors.Wrapf(err, "invalid migration directory %q", dirName)
	}

	return version, name, nil
}

// LoadCatalog scans the migrations root directory (one level deep) and
// returns the units it contains, sorted by version.
//
// Example:
//
//	catalog, err := migrator.LoadCatalog("ch_migrations")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, unit := range catalog {
//		fmt.Println(unit.Version, unit.Name)
//	}
//
// Fails with ErrBadInput when root does not exist or any entry is malformed.
func LoadCatalog(root string) (Catalog, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrBadInput, "migrations directory %s does not exist. Run chm setup first", root)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", root)
	}

	if !info.IsDir() {
		return nil, errors.Wrapf(ErrBadInput, "%s is not a directory", root)
	}

	return LoadCatalogFS(os.DirFS(root))
}

// LoadCatalogFS is LoadCatalog over an arbitrary filesystem whose root is the
// migrations directory.
func LoadCatalogFS(fsys fs.FS) (Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations directory")
	}

	catalog := make(Catalog, 0, len(entries))
	seen := make(map[string]string, len(entries))

	for _, entry := range entries {
		name := entry.Name()

		if slices.Contains(consts.ConfigFiles, name) || strings.HasPrefix(name, ".") {
			continue
		}

		if !entry.IsDir() {
			return nil, errors.Wrapf(ErrBadInput, "unexpected file %q in migrations directory", name)
		}

		version, label, err := ParseDirName(name)
		if err != nil {
			return nil, err
		}

		if other, ok := seen[version]; ok {
			return nil, errors.Wrapf(ErrBadInput, "duplicate migration version %s (%s and %s)", version, other, name)
		}
		seen[version] = name

		unit, err := NewUnit(version, label, fsys, name)
		if err != nil {
			return nil, err
		}

		catalog = append(catalog, unit)
	}

	slices.SortStableFunc(catalog, func(a, b *Unit) int {
		return strings.Compare(a.Version, b.Version)
	})

	return catalog, nil
}

// Find returns the unit with the given version, or nil.
func (c Catalog) Find(version string) *Unit {
	for _, u := range c {
		if u.Version == version {
			return u
		}
	}

	return nil
}

// Versions returns the version of every unit, in catalog order.
func (c Catalog) Versions() []string {
	versions := make([]string, len(c))
	for i, u := range c {
		versions[i] = u.Version
	}

	return versions
}
