package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("Steve"), "Steve"},
		{"multibyte", []byte("名前"), "名前"},
		{"invalid byte", []byte("St\xffeve"), "St�eve"},
		{"truncated sequence", []byte("\xe6\x97"), "�"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.input))
		})
	}
}

func TestEvent_JSON(t *testing.T) {
	ev := Event{
		Type:     TypeDeath,
		Time:     "12:34:56",
		Logger:   "Server thread",
		Level:    "INFO",
		Victim:   "Bob",
		Attacker: "Zombie",
		Text:     "Bob was slain by Zombie",
		Span:     Span{Start: 33, End: 56},
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "death",
		"time": "12:34:56",
		"logger": "Server thread",
		"level": "INFO",
		"victim": "Bob",
		"attacker": "Zombie",
		"text": "Bob was slain by Zombie",
		"span": {"start": 33, "end": 56}
	}`, string(data))
}

func TestTypes(t *testing.T) {
	types := Types()
	assert.Len(t, types, 7)
	assert.Contains(t, types, TypeChat)
	assert.Contains(t, types, TypeUnknown)
}
