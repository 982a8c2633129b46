package nutrition

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects the rollup period.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDay, ModeWeek, ModeMonth:
		return Mode(s), true
	default:
		return "", false
	}
}

const hoursPerDayBucket = 3

type Bucket struct {
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
}

type MacroAverage struct {
	Name   string  `json:"name"`
	Avg    float64 `json:"avg"`
	Target float64 `json:"target"`
}

type RollupResult struct {
	Mode          Mode           `json:"mode"`
	Start         time.Time      `json:"start"`
	Days          int            `json:"days"`
	Buckets       []Bucket       `json:"buckets"`
	MacroAverages []MacroAverage `json:"macro_averages"`
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// PeriodStart is the first instant of the period containing ref. Weeks start
// on Sunday.
func PeriodStart(mode Mode, ref time.Time) time.Time {
	day := midnight(ref)
	switch mode {
	case ModeWeek:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case ModeMonth:
		return day.AddDate(0, 0, 1-day.Day())
	default:
		return day
	}
}

// ElapsedDays is the averaging divisor for a period ending on ref's day.
func ElapsedDays(mode Mode, ref time.Time) int {
	switch mode {
	case ModeWeek:
		return int(ref.Weekday()) + 1
	case ModeMonth:
		return ref.Day()
	default:
		return 1
	}
}

// Rollup buckets entry calories over the period containing ref and averages
// macros per elapsed day. Timestamps are read in ref's location. Entries
// that fall outside every seeded bucket are ignored.
func Rollup(entries []LoggedEntry, mode Mode, ref time.Time, target MacroTargets) RollupResult {
	if _, ok := ParseMode(string(mode)); !ok {
		mode = ModeDay
	}
	loc := ref.Location()
	start := PeriodStart(mode, ref)
	end := midnight(ref).AddDate(0, 0, 1)

	labels, keyOf := seedBuckets(mode, start, ref)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	calories := make([]decimal.Decimal, len(labels))
	var protein, carbs, fats decimal.Decimal
	for i := range entries {
		ts := entries[i].Timestamp.In(loc)
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		b, ok := index[keyOf(ts)]
		if !ok {
			continue
		}
		n := sanitize(entries[i].Nutrients)
		calories[b] = calories[b].Add(decimal.NewFromFloat(n.Calories))
		protein = protein.Add(decimal.NewFromFloat(n.Protein))
		carbs = carbs.Add(decimal.NewFromFloat(n.Carbs))
		fats = fats.Add(decimal.NewFromFloat(n.Fats))
	}

	out := RollupResult{Mode: mode, Start: start, Days: ElapsedDays(mode, ref)}
	out.Buckets = make([]Bucket, len(labels))
	for i, l := range labels {
		out.Buckets[i] = Bucket{Label: l, Calories: calories[i].InexactFloat64()}
	}
	days := decimal.NewFromInt(int64(out.Days))
	avg := func(sum decimal.Decimal) float64 {
		return sum.Div(days).InexactFloat64()
	}
	out.MacroAverages = []MacroAverage{
		{Name: "Protein", Avg: avg(protein), Target: target.Protein},
		{Name: "Carbs", Avg: avg(carbs), Target: target.Carbs},
		{Name: "Fats", Avg: avg(fats), Target: target.Fats},
	}
	return out
}

func seedBuckets(mode Mode, start, ref time.Time) ([]string, func(time.Time) string) {
	switch mode {
	case ModeWeek:
		var labels []string
		for d := 0; d <= int(ref.Weekday()); d++ {
			labels = append(labels, start.AddDate(0, 0, d).Weekday().String()[:3])
		}
		return labels, func(t time.Time) string { return t.Weekday().String()[:3] }
	case ModeMonth:
		labels := make([]string, 0, ref.Day())
		for d := 1; d <= ref.Day(); d++ {
			labels = append(labels, strconv.Itoa(d))
		}
		return labels, func(t time.Time) string { return strconv.Itoa(t.Day()) }
	default:
		labels := make([]string, 0, 24/hoursPerDayBucket)
		for h := 0; h < 24; h += hoursPerDayBucket {
			labels = append(labels, strconv.Itoa(h)+":00")
		}
		return labels, func(t time.Time) string {
			return strconv.Itoa(t.Hour()/hoursPerDayBucket*hoursPerDayBucket) + ":00"
		}
	}
}

// RollupKey identifies a rollup by value.
type RollupKey struct {
	Mode          Mode
	Day           string
	CalorieTarget int
	Fingerprint   uint64
}

// RollupMemo keeps the most recent rollup and returns it while the key is
// unchanged. It is safe for concurrent use.
type RollupMemo struct {
	mu       sync.Mutex
	key      RollupKey
	result   RollupResult
	ok       bool
	computed int
}

// Get returns the rollup for the inputs, recomputing only when mode, the
// reference day, the calorie target or the entry set changed.
func (m *RollupMemo) Get(entries []LoggedEntry, mode Mode, ref time.Time, calorieTarget int) RollupResult {
	key := RollupKey{
		Mode:          mode,
		Day:           ref.Format(time.DateOnly),
		CalorieTarget: calorieTarget,
		Fingerprint:   Fingerprint(entries),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ok && m.key == key {
		return m.result
	}
	m.result = Rollup(entries, mode, ref, MacroTargetsFromCalories(float64(calorieTarget)))
	m.key = key
	m.ok = true
	m.computed++
	return m.result
}

// Computations reports how many times Get had to recompute.
func (m *RollupMemo) Computations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.computed
}

// Fingerprint hashes an entry set independently of order.
func Fingerprint(entries []LoggedEntry) uint64 {
	var sum uint64
	buf := make([]byte, 8)
	for i := range entries {
		e := &entries[i]
		h := fnv.New64a()
		binary.LittleEndian.PutUint64(buf, uint64(e.ID))
		h.Write(buf)
		binary.LittleEndian.PutUint64(buf, uint64(e.Timestamp.UnixNano()))
		h.Write(buf)
		for _, f := range fields {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(*f.pointer(&e.Nutrients)))
			h.Write(buf)
		}
		sum += h.Sum64()
	}
	return sum + uint64(len(entries))
}
