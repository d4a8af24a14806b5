package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		want    string
	}{
		{"zero", 0, "$0.00"},
		{"cents only", 5, "$0.05"},
		{"whole dollar", 100, "$1.00"},
		{"starting balance", 10000, "$100.00"},
		{"thousand separators", 123456789, "$1,234,567.89"},
		{"negative", -2550, "-$25.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBalance(tt.balance))
		})
	}
}

func TestFormatDiscordTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(ts, "R"))
}

func TestMention(t *testing.T) {
	assert.Equal(t, "<@42>", Mention(42))
}
