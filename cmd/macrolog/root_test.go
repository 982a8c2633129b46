package macrolog

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so runs in one process do
// not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MACROLOG_LOG_LEVEL", "error")
	t.Setenv("MACROLOG_USER", "")
	t.Setenv("MACROLOG_DB", "")
	path := filepath.Join(t.TempDir(), "macrolog.db")
	if _, err := run(t, "", "--db", path, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return path
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "", "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if out == "" {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "", "--db", path, "init")
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if !strings.Contains(out, "Current user: me") {
		t.Fatalf("expected existing user on second init, got %q", out)
	}
}

func TestLogAndToday(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "", "--db", path, "log", "food", "chicken", "breast", "--qty", "1", "--unit", "piece", "--date", "2026-03-04", "--time", "12:15")
	if err != nil {
		t.Fatalf("log food: %v", err)
	}
	if !strings.Contains(out, "287 kcal") {
		t.Fatalf("expected one 174 g breast to be 287 kcal, got %q", out)
	}

	if _, err := run(t, "", "--db", path, "log", "quick", "egg", "--date", "2026-03-04"); err != nil {
		t.Fatalf("log quick: %v", err)
	}

	out, err = run(t, "", "--db", path, "today", "--date", "2026-03-04")
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !strings.Contains(out, "Entries: 2") || !strings.Contains(out, "Intake: 365 kcal") {
		t.Fatalf("unexpected today output %q", out)
	}
	if !strings.Contains(out, "defaults") {
		t.Fatalf("expected default targets note, got %q", out)
	}

	out, err = run(t, "", "--db", path, "insights", "--mode", "day", "--date", "2026-03-04")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if !strings.Contains(out, "12:00\t287") {
		t.Fatalf("expected noon bucket, got %q", out)
	}
}

func TestManualLogAndEntryUpdate(t *testing.T) {
	path := setupEnv(t)
	if _, err := run(t, "", "--db", path, "log", "manual", "Leftovers", "--calories", "612.4", "--protein", "30.04", "--date", "2026-03-04"); err != nil {
		t.Fatalf("log manual: %v", err)
	}
	out, err := run(t, "", "--db", path, "entry", "list", "--date", "2026-03-04")
	if err != nil {
		t.Fatalf("entry list: %v", err)
	}
	if !strings.Contains(out, "Leftovers") || !strings.Contains(out, "612\t30.0") {
		t.Fatalf("unexpected entry list %q", out)
	}

	if _, err := run(t, "", "--db", path, "entry", "update", "1", "--calories", "500"); err != nil {
		t.Fatalf("entry update: %v", err)
	}
	out, err = run(t, "", "--db", path, "entry", "list", "--date", "2026-03-04")
	if err != nil {
		t.Fatalf("entry list: %v", err)
	}
	if !strings.Contains(out, "500\t30.0") {
		t.Fatalf("expected updated calories with protein kept, got %q", out)
	}

	if _, err := run(t, "", "--db", path, "entry", "update", "1"); err == nil {
		t.Fatalf("expected update without flags to fail")
	}
	if _, err := run(t, "", "--db", path, "entry", "delete", "1"); err != nil {
		t.Fatalf("entry delete: %v", err)
	}
	if _, err := run(t, "", "--db", path, "entry", "delete", "1"); err == nil {
		t.Fatalf("expected second delete to fail")
	}
}

func TestLabelFromStdinIsRemembered(t *testing.T) {
	path := setupEnv(t)
	label := "Nutrition Facts\nCalories 250\nTotal Fat 12g\nSodium 300mg\nTotal Carbohydrate 30g\nProtein 5g\n"
	out, err := run(t, label, "--db", path, "log", "label", "-", "--name", "Trail Mix", "--qty", "40")
	if err != nil {
		t.Fatalf("log label: %v", err)
	}
	if !strings.Contains(out, "100 kcal") || !strings.Contains(out, "Remembered") {
		t.Fatalf("unexpected label output %q", out)
	}

	out, err = run(t, "", "--db", path, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Trail Mix") {
		t.Fatalf("expected remembered product, got %q", out)
	}

	out, err = run(t, "", "--db", path, "search", "--offline", "trail")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "history\tTrail Mix") {
		t.Fatalf("expected history suggestion, got %q", out)
	}

	if _, err := run(t, "", "--db", path, "log", "history", "trail", "mix"); err != nil {
		t.Fatalf("log history: %v", err)
	}

	out, err = run(t, label, "--db", path, "log", "label", "-")
	if err != nil {
		t.Fatalf("log unnamed label: %v", err)
	}
	if strings.Contains(out, "Remembered") || !strings.Contains(out, "pass --name") {
		t.Fatalf("expected unnamed label to stay out of history, got %q", out)
	}
}

func TestUsersProfileWaterWeight(t *testing.T) {
	path := setupEnv(t)
	if _, err := run(t, "", "--db", path, "user", "add", "Alex"); err != nil {
		t.Fatalf("user add: %v", err)
	}
	out, err := run(t, "", "--db", path, "--user", "alex", "profile", "set",
		"--weight", "70", "--height-cm", "175", "--age", "30", "--sex", "male", "--activity", "1.2")
	if err != nil {
		t.Fatalf("profile set: %v", err)
	}
	if !strings.Contains(out, "Targets: 1979 kcal | P 148g | C 198g | F 66g") {
		t.Fatalf("unexpected targets %q", out)
	}

	if _, err := run(t, "", "--db", path, "--user", "alex", "water", "add", "500", "--unit", "ml"); err != nil {
		t.Fatalf("water add: %v", err)
	}
	if _, err := run(t, "", "--db", path, "--user", "alex", "weight", "add", "170", "--unit", "lb"); err != nil {
		t.Fatalf("weight add: %v", err)
	}
	out, err = run(t, "", "--db", path, "--user", "alex", "weight", "list")
	if err != nil {
		t.Fatalf("weight list: %v", err)
	}
	if !strings.Contains(out, "77.1\t170.0") {
		t.Fatalf("unexpected weight list %q", out)
	}

	if _, err := run(t, "", "--db", path, "config", "set", "weight_unit", "lb"); err != nil {
		t.Fatalf("config set weight_unit: %v", err)
	}
	out, err = run(t, "", "--db", path, "--user", "alex", "weight", "add", "165")
	if err != nil {
		t.Fatalf("weight add with configured unit: %v", err)
	}
	if !strings.Contains(out, "(165.0 lb)") {
		t.Fatalf("expected configured lb unit, got %q", out)
	}
	out, err = run(t, "", "--db", path, "--user", "alex", "weight", "add", "75", "--unit", "kg")
	if err != nil || !strings.Contains(out, "Logged 75.0 kg") {
		t.Fatalf("expected explicit --unit to win, got %q err=%v", out, err)
	}
	if _, err := run(t, "", "--db", path, "config", "set", "theme", "dark"); err == nil {
		t.Fatalf("expected unknown config key to fail")
	}

	// the default user is untouched
	out, err = run(t, "", "--db", path, "profile", "show")
	if err == nil {
		t.Fatalf("expected no profile for default user, got %q", out)
	}
}

func TestInteractiveSearchPrintsLatestTerm(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "ap\napple\n", "--db", path, "search", "--offline", "-i")
	if err != nil {
		t.Fatalf("interactive search: %v", err)
	}
	if !strings.Contains(out, "== apple") || !strings.Contains(out, "local\tapple") {
		t.Fatalf("expected results for the latest term, got %q", out)
	}
}

func TestBackupDoctorAndExportImport(t *testing.T) {
	path := setupEnv(t)
	if _, err := run(t, "", "--db", path, "log", "quick", "egg", "--date", "2026-03-04", "--time", "08:00"); err != nil {
		t.Fatalf("log quick: %v", err)
	}

	out, err := run(t, "", "--db", path, "doctor")
	if err != nil {
		t.Fatalf("doctor on a clean db: %v (%q)", err, out)
	}
	if !strings.Contains(out, "SQLite integrity: ok") {
		t.Fatalf("unexpected doctor output %q", out)
	}

	backup := filepath.Join(t.TempDir(), "snap.db")
	out, err = run(t, "", "--db", path, "backup", "create", "--out", backup)
	if err != nil {
		t.Fatalf("backup create: %v", err)
	}
	if !strings.Contains(out, "Checksum: ") {
		t.Fatalf("unexpected backup output %q", out)
	}
	restored := filepath.Join(t.TempDir(), "restored.db")
	if _, err := run(t, "", "--db", restored, "backup", "restore", "--file", backup); err != nil {
		t.Fatalf("backup restore: %v", err)
	}
	out, err = run(t, "", "--db", restored, "today", "--date", "2026-03-04")
	if err != nil {
		t.Fatalf("today on restored db: %v", err)
	}
	if !strings.Contains(out, "Entries: 1") {
		t.Fatalf("expected restored entry, got %q", out)
	}

	exported := filepath.Join(t.TempDir(), "export.json")
	if _, err := run(t, "", "--db", path, "export", "--out", exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	out, err = run(t, "", "--db", path, "import", "--in", exported)
	if err != nil {
		t.Fatalf("import into same user: %v", err)
	}
	if !strings.Contains(out, "Imported 0 entries (1 skipped)") {
		t.Fatalf("expected duplicate entry to be skipped, got %q", out)
	}

	if _, err := run(t, "", "--db", path, "user", "add", "Robin"); err != nil {
		t.Fatalf("user add: %v", err)
	}
	out, err = run(t, "", "--db", path, "--user", "robin", "import", "--in", exported, "--dry-run")
	if err != nil {
		t.Fatalf("dry-run import: %v", err)
	}
	if !strings.Contains(out, "Would import 1 entries") {
		t.Fatalf("unexpected dry-run output %q", out)
	}

	out, err = run(t, "", "--db", path, "--user", "robin", "export", "--format", "csv")
	if err != nil {
		t.Fatalf("csv export: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Fatalf("dry run should not have written entries, got %q", out)
	}
}
