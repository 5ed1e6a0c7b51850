package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

const upSuffix = ".up.sql"

type upMigration struct {
	version uint
	name    string
}

// LatestMigrationVersion returns the version the embedded migrations bring the
// mediation schema to.
func LatestMigrationVersion() (uint, error) {
	ups, err := upMigrations(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, err
	}
	return ups[len(ups)-1].version, nil
}

// MigrationsChecksum fingerprints the embedded up migrations. The schema gate
// compares it with the checksum recorded when the schema was activated.
func MigrationsChecksum() (string, error) {
	return checksum(embeddedMigrations, migrationsDir)
}

func checksum(fsys fs.FS, dir string) (string, error) {
	ups, err := upMigrations(fsys, dir)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, m := range ups {
		content, err := fs.ReadFile(fsys, path.Join(dir, m.name))
		if err != nil {
			return "", fmt.Errorf("read migration %s: %w", m.name, err)
		}
		fmt.Fprintf(h, "%s\x00", m.name)
		h.Write(content)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// upMigrations lists the up migrations in dir ordered by version. Two files
// sharing a version would make golang-migrate refuse the source, so they are
// rejected here as well.
func upMigrations(fsys fs.FS, dir string) ([]upMigration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var ups []upMigration
	seen := map[uint]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, upSuffix) {
			continue
		}
		version, ok := parseMigrationVersion(name)
		if !ok {
			return nil, fmt.Errorf("invalid migration filename: %s", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, name, version)
		}
		seen[version] = name
		ups = append(ups, upMigration{version: version, name: name})
	}
	if len(ups) == 0 {
		return nil, errors.New("no embedded migrations found")
	}

	slices.SortFunc(ups, func(a, b upMigration) int {
		return int(a.version) - int(b.version)
	})
	return ups, nil
}

// parseMigrationVersion reads the numeric prefix of "000002_call_details.up.sql".
func parseMigrationVersion(name string) (uint, bool) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok || prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
