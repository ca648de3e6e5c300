package migrator

// The functions in this file are pure: they operate on a catalog and a ledger
// snapshot taken by the caller and perform no I/O.

// Pending returns every catalog unit without a matching ledger record,
// preserving catalog order.
func Pending(catalog Catalog, records []AppliedRecord) Catalog {
	applied := recordedVersions(records)

	pending := make(Catalog, 0, len(catalog))
	for _, unit := range catalog {
		if _, ok := applied[unit.Version]; !ok {
			pending = append(pending, unit)
		}
	}

	return pending
}

// Applied returns every catalog unit with a matching ledger record,
// preserving catalog order.
func Applied(catalog Catalog, records []AppliedRecord) Catalog {
	applied := recordedVersions(records)

	units := make(Catalog, 0, len(records))
	for _, unit := range catalog {
		if _, ok := applied[unit.Version]; ok {
			units = append(units, unit)
		}
	}

	return units
}

// AppliedNotInCatalog returns every ledger record whose version has no unit
// in the catalog, preserving ledger order.
func AppliedNotInCatalog(catalog Catalog, records []AppliedRecord) []AppliedRecord {
	local := make(map[string]struct{}, len(catalog))
	for _, unit := range catalog {
		local[unit.Version] = struct{}{}
	}

	var missing []AppliedRecord
	for _, record := range records {
		if _, ok := local[record.Version]; !ok {
			missing = append(missing, record)
		}
	}

	return missing
}

// CheckDrift fails with a *DriftError when the ledger holds versions that are
// missing from the catalog. Nothing may be applied or reverted until it passes.
func CheckDrift(catalog Catalog, records []AppliedRecord) error {
	missing := AppliedNotInCatalog(catalog, records)
	if len(missing) == 0 {
		return nil
	}

	versions := make([]string, len(missing))
	for i, record := range missing {
		versions[i] = record.Version
	}

	return &DriftError{Versions: versions}
}

// MostRecentlyApplied returns the record with the latest ran_at, breaking ties
// by the greatest version. Returns ErrNothingToRevert for an empty ledger.
func MostRecentlyApplied(records []AppliedRecord) (AppliedRecord, error) {
	if len(records) == 0 {
		return AppliedRecord{}, ErrNothingToRevert
	}

	latest := records[0]
	for _, record := range records[1:] {
		switch c := record.RanAt.Compare(latest.RanAt); {
		case c > 0:
			latest = record
		case c == 0 && record.Version > latest.Version:
			latest = record
		}
	}

	return latest, nil
}

func recordedVersions(records []AppliedRecord) map[string]struct{} {
	versions := make(map[string]struct{}, len(records))
	for _, record := range records {
		versions[record.Version] = struct{}{}
	}

	return versions
}
