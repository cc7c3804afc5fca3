package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDiacritics(t *testing.T) {
	tests := map[string]string{
		"Phở bò":          "Pho bo",
		"Đậu phụ":         "Dau phu",
		"crème brûlée":    "creme brulee",
		"plain":           "plain",
		"":                "",
		"Bánh mì đặc biệt": "Banh mi dac biet",
	}
	for in, want := range tests {
		assert.Equal(t, want, RemoveDiacritics(in), in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ga nuong mat ong", Normalize("  Gà   Nướng Mật Ong "))
}

func TestDurationToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"01:30:00", 90},
		{"00:45:30", 46},
		{"1.02:00:00", 1560},
		{"00:00:29", 0},
		{"90", 0},
		{"aa:bb:cc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DurationToMinutes(tt.in))
		})
	}
}

func TestMinutesToDuration(t *testing.T) {
	assert.Equal(t, "1:30:00", MinutesToDuration(90))
	assert.Equal(t, "0:05:00", MinutesToDuration(5))
	assert.Equal(t, "0:00:00", MinutesToDuration(-3))
}
