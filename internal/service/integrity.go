package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	Integrity            string `json:"integrity"`
	ForeignKeyViolations int    `json:"foreign_key_violations"`
	UnknownSourceKinds   int    `json:"unknown_source_kinds"`
	InvalidEntryDates    int    `json:"invalid_entry_dates"`
	DuplicateEntryRows   int    `json:"duplicate_entry_rows"`
	ExpiredBarcodeRows   int    `json:"expired_barcode_rows"`
	DanglingCurrentUser  bool   `json:"dangling_current_user"`
	PurgedBarcodeRows    int64  `json:"purged_barcode_rows,omitempty"`
	ClearedCurrentUser   bool   `json:"cleared_current_user,omitempty"`
}

// Healthy reports whether nothing needs attention. Expired cache rows are
// housekeeping and do not count.
func (r DoctorReport) Healthy() bool {
	return r.Integrity == "ok" &&
		r.ForeignKeyViolations == 0 &&
		r.UnknownSourceKinds == 0 &&
		r.InvalidEntryDates == 0 &&
		r.DuplicateEntryRows == 0 &&
		!r.DanglingCurrentUser
}

// CreateBackup writes a consistent snapshot of the open database to outPath
// with a .sha256 file next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, invalidf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, invalidf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies a snapshot over dbPath. The database must not be open
// while this runs.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return invalidf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return invalidf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return invalidf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	// stale journal files would be replayed over the restored data
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", dbPath+suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

// ListBackups returns the .db snapshots in dir, newest first.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks the stored data. With fix it purges expired barcode rows
// and clears a current-user setting that points at a removed user; other
// findings are only reported.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`PRAGMA integrity_check`).Scan(&report.Integrity); err != nil {
		return report, fmt.Errorf("doctor integrity check: %w", err)
	}

	rows, err := db.Query(`PRAGMA foreign_key_check`)
	if err != nil {
		return report, fmt.Errorf("doctor foreign key check: %w", err)
	}
	for rows.Next() {
		report.ForeignKeyViolations++
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor foreign key rows: %w", err)
	}
	_ = rows.Close()

	var kinds []any
	for _, k := range []nutrition.Kind{nutrition.KindBarcode, nutrition.KindOCR, nutrition.KindLocal, nutrition.KindManual, nutrition.KindHistory} {
		kinds = append(kinds, string(k))
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM entries WHERE source_kind NOT IN (?, ?, ?, ?, ?)`, kinds...).Scan(&report.UnknownSourceKinds); err != nil {
		return report, fmt.Errorf("doctor source kind check: %w", err)
	}

	if err := db.QueryRow(`SELECT COUNT(1) FROM entries WHERE date(entry_date) IS NULL OR date(entry_date) != entry_date`).Scan(&report.InvalidEntryDates); err != nil {
		return report, fmt.Errorf("doctor entry date check: %w", err)
	}

	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt
  FROM entries
  GROUP BY user_id, name, source_kind, logged_at
  HAVING cnt > 1
)
`).Scan(&report.DuplicateEntryRows); err != nil {
		return report, fmt.Errorf("doctor duplicate query: %w", err)
	}

	if err := db.QueryRow(`SELECT COUNT(1) FROM barcode_cache WHERE expires_at <= ?`, formatStamp(nowFunc())).Scan(&report.ExpiredBarcodeRows); err != nil {
		return report, fmt.Errorf("doctor barcode cache check: %w", err)
	}

	current, ok, err := GetConfig(db, ConfigCurrentUser)
	if err != nil {
		return report, err
	}
	if ok && current != "" {
		if _, err := ResolveUser(db, current); err != nil {
			if !isNotFound(err) {
				return report, err
			}
			report.DanglingCurrentUser = true
		}
	}

	if !fix {
		return report, nil
	}
	if report.ExpiredBarcodeRows > 0 {
		n, err := PurgeBarcodeCache(db)
		if err != nil {
			return report, err
		}
		report.PurgedBarcodeRows = n
	}
	if report.DanglingCurrentUser {
		if _, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, ConfigCurrentUser); err != nil {
			return report, fmt.Errorf("doctor clear current user: %w", err)
		}
		report.ClearedCurrentUser = true
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
