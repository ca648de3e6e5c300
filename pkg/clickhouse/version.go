package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?`)

// VersionInfo represents parsed ClickHouse version information
type VersionInfo struct {
	Major int    // Major version number (e.g., 23)
	Minor int    // Minor version number (e.g., 3)
	Patch int    // Patch version number (e.g., 1)
	Raw   string // Raw version string from ClickHouse
}

// String returns the version as a string in format "major.minor.patch"
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsAtLeast checks if this version is at least the specified version
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// SupportsLightweightDelete reports whether DELETE FROM is generally
// available (23.3+). Older servers need ALTER TABLE ... DELETE.
func (v VersionInfo) SupportsLightweightDelete() bool {
	return v.IsAtLeast(23, 3)
}

// GetVersion retrieves and parses the ClickHouse version from the server
func (c *Client) GetVersion(ctx context.Context) (*VersionInfo, error) {
	var raw string
	if err := c.conn.QueryRow(ctx, "SELECT version()").Scan(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to query ClickHouse version")
	}

	return ParseVersion(raw)
}

// ParseVersion parses a ClickHouse version string such as "23.8.2.7",
// "22.8.2.11-testing" or "21.10.3.9 (official build)".
func ParseVersion(raw string) (*VersionInfo, error) {
	cleaned := strings.TrimSpace(raw)
	if idx := strings.IndexAny(cleaned, " -"); idx != -1 {
		cleaned = cleaned[:idx]
	}

	matches := versionRegex.FindStringSubmatch(cleaned)
	if matches == nil {
		return nil, errors.Errorf("invalid version format: %q", raw)
	}

	info := &VersionInfo{Raw: raw}
	info.Major, _ = strconv.Atoi(matches[1])
	info.Minor, _ = strconv.Atoi(matches[2])
	if matches[3] != "" {
		info.Patch, _ = strconv.Atoi(matches[3])
	}

	return info, nil
}
