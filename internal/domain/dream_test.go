package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEntryDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantDay string
		wantOK  bool
	}{
		{"bare date", "2026-03-14", "2026-03-14", true},
		{"date with trailing text", "2026-03-14, early morning", "2026-03-14", true},
		{"padded", "  2026-03-14  ", "2026-03-14", true},
		{"free text", "last tuesday night", "", false},
		{"empty", "", "", false},
		{"partial date", "2026-03", "", false},
		{"garbage prefix", "march 2026-03-14", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, ok := ParseEntryDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantDay, day.Format("2006-01-02"))
			}
		})
	}
}

func TestDreamEffectiveDate(t *testing.T) {
	created := time.Date(2026, 8, 20, 23, 45, 0, 0, time.Local)

	withDate := &Dream{Date: "2026-08-01", CreatedAt: created}
	assert.Equal(t, "2026-08-01", withDate.EffectiveDate().Format("2006-01-02"))

	withoutDate := &Dream{Date: "a strange night", CreatedAt: created}
	assert.Equal(t, "2026-08-20", withoutDate.EffectiveDate().Format("2006-01-02"))
}
