package livecookie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).
)

// Chromium stores timestamps as microseconds since 1601-01-01.
const chromiumEpochOffsetSeconds = 11644473600

type chromiumCookieRow struct {
	hostKey        string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiresUTC     int64
	isSecure       bool
	isHTTPOnly     bool
	sameSite       int64
}

// directReadCookies is a test seam around the snapshot-and-decrypt path.
var directReadCookies = directChromiumRead

// directChromiumRead decrypts cookies straight out of the profile's SQLite
// store, without the browser's involvement. A value the cipher refuses as
// unsupported aborts the whole read; transient per-value failures skip the
// row with a warning.
func directChromiumRead(ctx context.Context, vendor chromiumVendor, userDataDir string, dbPath string, domain string, timeout time.Duration) ([]Cookie, []string, error) {
	cipher, warnings, err := newCookieCipher(vendor, userDataDir, timeout)
	if err != nil {
		return nil, warnings, err
	}

	snapshot, cleanup, snapWarnings, err := chromiumOpenSnapshotReadOnly(ctx, dbPath)
	warnings = append(warnings, snapWarnings...)
	if err != nil {
		return nil, warnings, err
	}
	defer cleanup()

	db, err := chromiumOpenDB(ctx, snapshot)
	if err != nil {
		return nil, warnings, err
	}
	defer func() { _ = db.Close() }()

	metaVersion := chromiumMetaVersion(ctx, db)
	rows, err := chromiumReadCookieRows(ctx, db, []string{domain})
	if err != nil {
		return nil, warnings, err
	}

	out := make([]Cookie, 0, len(rows))
	for _, r := range rows {
		value := r.value
		if len(r.encryptedValue) > 0 {
			value, err = cipher.decrypt(r.encryptedValue, metaVersion)
			if err != nil {
				if errors.Is(err, ErrUnsupported) {
					return nil, warnings, fmt.Errorf("cookie %q for %q: %w", r.name, r.hostKey, err)
				}
				warnings = append(warnings, fmt.Sprintf("livecookie: skipping cookie %q for %q: %v", r.name, r.hostKey, err))
				continue
			}
		}

		out = append(out, Cookie{
			Name:     r.name,
			Value:    value,
			Domain:   r.hostKey,
			Path:     r.path,
			Expires:  chromiumTimeToUnix(r.expiresUTC),
			Secure:   r.isSecure,
			HTTPOnly: r.isHTTPOnly,
			SameSite: chromiumSameSiteFromInt(r.sameSite),
			Source: Source{
				Browser:   vendor.browser,
				Strategy:  StrategyDirectDatabaseRead,
				StorePath: dbPath,
			},
		})
	}
	return out, warnings, nil
}

func chromiumTimeToUnix(expiresUTC int64) int64 {
	if expiresUTC <= 0 {
		return 0
	}
	sec := expiresUTC/1_000_000 - chromiumEpochOffsetSeconds
	if sec < 0 {
		return 0
	}
	return sec
}

func chromiumSameSiteFromInt(v int64) SameSite {
	switch v {
	case 2:
		return SameSiteStrict
	case 1:
		return SameSiteLax
	default:
		return SameSiteNone
	}
}

func chromiumOpenSnapshotReadOnly(ctx context.Context, dbPath string) (snapshotPath string, cleanup func(), warnings []string, err error) {
	_ = ctx
	dir, err := os.MkdirTemp("", "livecookie-chromium-")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	target := filepath.Join(dir, "Cookies")
	if err := copyFile(dbPath, target); err != nil {
		warnings = append(warnings, fmt.Sprintf("livecookie: failed to copy cookies DB: %v", err))
		cleanup()
		return "", nil, warnings, err
	}

	// If WAL mode is enabled, recent writes may live in sidecars.
	_ = copyFileIfExists(dbPath+"-wal", target+"-wal")
	_ = copyFileIfExists(dbPath+"-shm", target+"-shm")

	return target, cleanup, warnings, nil
}

func chromiumOpenDB(ctx context.Context, snapshotPath string) (*sql.DB, error) {
	dsn := "file:" + filepath.ToSlash(snapshotPath) + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func chromiumMetaVersion(ctx context.Context, db *sql.DB) int64 {
	if db == nil {
		return 0
	}
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value)
	if err != nil {
		return 0
	}
	v, err := parseInt64(value)
	if err != nil {
		return 0
	}
	return v
}

func chromiumReadCookieRows(ctx context.Context, db *sql.DB, hosts []string) ([]chromiumCookieRow, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}

	where, args := chromiumHostWhereClause(hosts)
	query := strings.Join([]string{
		`SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly, samesite`,
		`FROM cookies`,
		`WHERE (` + where + `)`,
		`ORDER BY expires_utc DESC`,
	}, " ")

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []chromiumCookieRow
	for rows.Next() {
		var r chromiumCookieRow
		var encrypted []byte
		var expires sql.NullInt64
		var secure sql.NullInt64
		var httpOnly sql.NullInt64
		var sameSite sql.NullInt64

		if err := rows.Scan(&r.hostKey, &r.name, &r.path, &r.value, &encrypted, &expires, &secure, &httpOnly, &sameSite); err != nil {
			return nil, err
		}

		r.encryptedValue = encrypted
		if expires.Valid {
			r.expiresUTC = expires.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isHTTPOnly = httpOnly.Valid && httpOnly.Int64 == 1
		if sameSite.Valid {
			r.sameSite = sameSite.Int64
		}

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func chromiumHostWhereClause(hosts []string) (string, []any) {
	var clauses []string
	var args []any
	for _, host := range hosts {
		host = normalizeQueryDomain(host)
		if host == "" {
			continue
		}
		for _, candidate := range expandHostCandidates(host) {
			clauses = append(clauses, "host_key = ?", "host_key = ?", "host_key LIKE ?")
			args = append(args, candidate, "."+candidate, "%."+candidate)
		}
	}
	if len(clauses) == 0 {
		return "1=0", nil
	}
	return strings.Join(clauses, " OR "), args
}
