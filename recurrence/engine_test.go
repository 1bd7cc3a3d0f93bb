package recurrence

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func dates(t *testing.T, ss ...string) []civil.Date {
	t.Helper()
	out := make([]civil.Date, 0, len(ss))
	for _, s := range ss {
		out = append(out, date(t, s))
	}
	return out
}

func TestValidateEndDate(t *testing.T) {
	start := civil.Date{Year: 2025, Month: time.November, Day: 10}

	tests := []struct {
		name    string
		end     mo.Option[civil.Date]
		wantErr error
	}{
		{name: "absent end", end: mo.None[civil.Date]()},
		{name: "same day", end: mo.Some(start)},
		{name: "after start", end: mo.Some(start.AddDays(1))},
		{name: "before start", end: mo.Some(start.AddDays(-1)), wantErr: ErrEndBeforeStart},
		{name: "a year before", end: mo.Some(civil.Date{Year: 2024, Month: time.December, Day: 31}), wantErr: ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndDate(start, tt.end)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "repeat end date must be on or after the start date", err.Error())
		})
	}
}

func TestEngine_DefaultEndDate(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		start string
		want  string
	}{
		{start: "2024-11-01", want: "2025-11-01"},
		{start: "2024-12-31", want: "2025-12-31"},
		{start: "2025-01-15", want: "2025-12-31"},
		{start: "2025-12-31", want: "2025-12-31"},
		{start: "2024-02-29", want: "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got := engine.DefaultEndDate(date(t, tt.start))
			assert.Equal(t, tt.want, got.String())
			assert.False(t, got.After(engine.Config().Horizon))
		})
	}
}

func TestEngine_DefaultEndDateFollowsConfiguredHorizon(t *testing.T) {
	engine := NewEngineWithConfig(EngineConfig{Horizon: civil.Date{Year: 2030, Month: time.June, Day: 30}})

	assert.Equal(t, "2026-01-15", engine.DefaultEndDate(date(t, "2025-01-15")).String())
	assert.Equal(t, "2030-06-30", engine.DefaultEndDate(date(t, "2029-12-01")).String())
	assert.Equal(t, 100, engine.Config().MaxOccurrences)
}

func TestEngine_Generate(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name       string
		start      string
		descriptor Descriptor
		want       []string
	}{
		{
			name:       "daily within explicit end",
			start:      "2025-11-01",
			descriptor: Descriptor{Cadence: Daily{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.November, Day: 5})},
			want:       []string{"2025-11-01", "2025-11-02", "2025-11-03", "2025-11-04", "2025-11-05"},
		},
		{
			name:       "weekly from a saturday",
			start:      "2025-11-01",
			descriptor: Descriptor{Cadence: Weekly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.November, Day: 30})},
			want:       []string{"2025-11-01", "2025-11-08", "2025-11-15", "2025-11-22", "2025-11-29"},
		},
		{
			name:       "monthly on the 31st skips short months",
			start:      "2025-01-31",
			descriptor: Descriptor{Cadence: Monthly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.June, Day: 30})},
			want:       []string{"2025-01-31", "2025-03-31", "2025-05-31"},
		},
		{
			name:       "daily every other day",
			start:      "2025-03-01",
			descriptor: Descriptor{Cadence: Daily{Interval: 2}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.March, Day: 7})},
			want:       []string{"2025-03-01", "2025-03-03", "2025-03-05", "2025-03-07"},
		},
		{
			name:       "monthly every two months across a year boundary",
			start:      "2024-11-15",
			descriptor: Descriptor{Cadence: Monthly{Interval: 2}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.May, Day: 15})},
			want:       []string{"2024-11-15", "2025-01-15", "2025-03-15", "2025-05-15"},
		},
		{
			name:       "monthly on the 30th skips february only",
			start:      "2025-01-30",
			descriptor: Descriptor{Cadence: Monthly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.April, Day: 30})},
			want:       []string{"2025-01-30", "2025-03-30", "2025-04-30"},
		},
		{
			name:       "yearly",
			start:      "2021-06-10",
			descriptor: Descriptor{Cadence: Yearly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2024, Month: time.December, Day: 1})},
			want:       []string{"2021-06-10", "2022-06-10", "2023-06-10", "2024-06-10"},
		},
		{
			name:       "yearly on february 29 only in leap years",
			start:      "2016-02-29",
			descriptor: Descriptor{Cadence: Yearly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.December, Day: 31})},
			want:       []string{"2016-02-29", "2020-02-29", "2024-02-29"},
		},
		{
			name:       "start after explicit end yields nothing",
			start:      "2025-06-10",
			descriptor: Descriptor{Cadence: Daily{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.June, Day: 1})},
			want:       []string{},
		},
		{
			name:       "start after horizon yields nothing",
			start:      "2026-01-05",
			descriptor: Descriptor{Cadence: Weekly{Interval: 1}},
			want:       []string{},
		},
		{
			name:       "non-repeating ignores the other fields",
			start:      "2030-01-01",
			descriptor: Descriptor{EndDate: mo.Some(civil.Date{Year: 2020, Month: time.January, Day: 1})},
			want:       []string{"2030-01-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Generate(date(t, tt.start), tt.descriptor)
			require.NoError(t, err)
			assert.Equal(t, dates(t, tt.want...), got)
		})
	}
}

func TestEngine_GenerateCaps(t *testing.T) {
	engine := NewEngine()

	t.Run("count cap", func(t *testing.T) {
		got, err := engine.Generate(date(t, "2024-01-01"), Descriptor{
			Cadence: Daily{Interval: 1},
			EndDate: mo.Some(date(t, "2025-12-31")),
		})
		require.NoError(t, err)
		require.Len(t, got, 100)
		assert.Equal(t, "2024-04-09", got[99].String())
	})

	t.Run("default end one year out", func(t *testing.T) {
		got, err := engine.Generate(date(t, "2024-11-01"), Descriptor{Cadence: Monthly{Interval: 1}})
		require.NoError(t, err)
		require.Len(t, got, 13)
		assert.Equal(t, "2024-11-01", got[0].String())
		assert.Equal(t, "2025-11-01", got[12].String())
	})

	t.Run("horizon overrides explicit end", func(t *testing.T) {
		got, err := engine.Generate(date(t, "2025-11-01"), Descriptor{
			Cadence: Daily{Interval: 1},
			EndDate: mo.Some(date(t, "2026-12-31")),
		})
		require.NoError(t, err)
		require.Len(t, got, 61)
		assert.Equal(t, "2025-12-31", got[60].String())
	})

	t.Run("configured cap", func(t *testing.T) {
		small := NewEngineWithConfig(EngineConfig{
			Horizon:        date(t, "2025-12-31"),
			MaxOccurrences: 3,
		})
		got, err := small.Generate(date(t, "2025-01-01"), Descriptor{Cadence: Weekly{Interval: 1}})
		require.NoError(t, err)
		assert.Equal(t, dates(t, "2025-01-01", "2025-01-08", "2025-01-15"), got)
	})

	t.Run("skipped months are not counted", func(t *testing.T) {
		small := NewEngineWithConfig(EngineConfig{
			Horizon:        date(t, "2030-12-31"),
			MaxOccurrences: 4,
		})
		got, err := small.Generate(date(t, "2025-01-31"), Descriptor{
			Cadence: Monthly{Interval: 1},
			EndDate: mo.Some(date(t, "2030-12-31")),
		})
		require.NoError(t, err)
		assert.Equal(t, dates(t, "2025-01-31", "2025-03-31", "2025-05-31", "2025-07-31"), got)
	})

	t.Run("day that never recurs before the bound terminates", func(t *testing.T) {
		// every 12 months from February 29 lands in February of common years only
		got, err := engine.Generate(date(t, "2024-02-29"), Descriptor{
			Cadence: Monthly{Interval: 12},
			EndDate: mo.Some(date(t, "2025-12-31")),
		})
		require.NoError(t, err)
		assert.Equal(t, dates(t, "2024-02-29"), got)
	})
}

func TestEngine_GenerateInvariants(t *testing.T) {
	engine := NewEngine()
	horizon := engine.Config().Horizon

	cadences := []Cadence{
		Daily{Interval: 1}, Daily{Interval: 3},
		Weekly{Interval: 1}, Weekly{Interval: 2},
		Monthly{Interval: 1}, Monthly{Interval: 5},
		Yearly{Interval: 1},
		Daily{Interval: math.MaxInt}, Weekly{Interval: math.MaxInt},
		Monthly{Interval: math.MaxInt}, Yearly{Interval: math.MaxInt},
	}
	starts := []string{"2023-01-31", "2024-02-29", "2024-07-15", "2025-08-31", "2025-12-31"}
	ends := []mo.Option[civil.Date]{
		mo.None[civil.Date](),
		mo.Some(civil.Date{Year: 2025, Month: time.September, Day: 30}),
		mo.Some(civil.Date{Year: 2027, Month: time.January, Day: 1}),
	}

	for _, cadence := range cadences {
		for _, s := range starts {
			for _, end := range ends {
				start := date(t, s)
				d := Descriptor{Cadence: cadence, EndDate: end}
				bound := engine.EffectiveEnd(start, d)

				got, err := engine.Generate(start, d)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(got), 100)

				if !start.After(bound) {
					require.NotEmpty(t, got)
					assert.Equal(t, start, got[0])
				} else {
					assert.Empty(t, got)
				}
				for i, occ := range got {
					assert.False(t, occ.After(horizon), "%s beyond horizon", occ)
					assert.False(t, occ.After(bound), "%s beyond bound %s", occ, bound)
					if i > 0 {
						assert.True(t, got[i-1].Before(occ), "not increasing at %d", i)
					}
				}
			}
		}
	}
}

func TestEngine_GenerateHugeInterval(t *testing.T) {
	engine := NewEngine()
	start := date(t, "2025-12-01")
	end := mo.Some(date(t, "2025-12-31"))

	tests := []struct {
		name    string
		cadence Cadence
	}{
		{"daily", Daily{Interval: math.MaxInt}},
		{"weekly", Weekly{Interval: math.MaxInt}},
		{"monthly", Monthly{Interval: math.MaxInt}},
		{"yearly", Yearly{Interval: math.MaxInt}},
		{"yearly past four digits", Yearly{Interval: 20000}},
		{"monthly just past span", Monthly{Interval: maxSpanYears*12 + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Generate(start, Descriptor{Cadence: tt.cadence, EndDate: end})
			require.NoError(t, err)
			assert.Equal(t, []civil.Date{start}, got)
		})
	}
}

func TestEngine_GenerateMatchesRRule(t *testing.T) {
	engine := NewEngineWithConfig(EngineConfig{Horizon: civil.Date{Year: 2040, Month: time.December, Day: 31}})

	tests := []struct {
		name  string
		start string
		d     Descriptor
	}{
		{name: "monthly 31st", start: "2025-01-31", d: Descriptor{Cadence: Monthly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2026, Month: time.December, Day: 31})}},
		{name: "bi-monthly 29th", start: "2025-12-29", d: Descriptor{Cadence: Monthly{Interval: 2}, EndDate: mo.Some(civil.Date{Year: 2027, Month: time.December, Day: 31})}},
		{name: "leap day yearly", start: "2000-02-29", d: Descriptor{Cadence: Yearly{Interval: 1}, EndDate: mo.Some(civil.Date{Year: 2040, Month: time.March, Day: 1})}},
		{name: "weekly", start: "2025-02-03", d: Descriptor{Cadence: Weekly{Interval: 3}, EndDate: mo.Some(civil.Date{Year: 2025, Month: time.December, Day: 1})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := date(t, tt.start)
			got, err := engine.Generate(start, tt.d)
			require.NoError(t, err)

			opt, err := tt.d.ROption(start, engine.EffectiveEnd(start, tt.d))
			require.NoError(t, err)
			opt.Count = engine.Config().MaxOccurrences
			rule, err := rrule.NewRRule(opt)
			require.NoError(t, err)

			want := make([]civil.Date, 0)
			for _, occ := range rule.All() {
				want = append(want, civil.DateOf(occ))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestEngine_GenerateRejectsBadInterval(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Generate(date(t, "2025-01-01"), Descriptor{Cadence: Weekly{Interval: 0}})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestEngine_GenerateDoesNotMutateInput(t *testing.T) {
	engine := NewEngine()
	start := date(t, "2025-01-31")
	d := Descriptor{Cadence: Monthly{Interval: 1}, EndDate: mo.Some(date(t, "2025-06-30")), SeriesID: "s-1"}
	before := d

	first, err := engine.Generate(start, d)
	require.NoError(t, err)
	second, err := engine.Generate(start, d)
	require.NoError(t, err)

	assert.Equal(t, before, d)
	assert.Equal(t, first, second)
}
