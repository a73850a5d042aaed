package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerIs(t *testing.T) {
	g := LoggerIs("Server thread", LevelInfo)

	assert.True(t, g(LoggerContext{Name: []byte("Server thread"), Level: LevelInfo}))
	assert.False(t, g(LoggerContext{Name: []byte("Server thread"), Level: LevelWarn}))
	assert.False(t, g(LoggerContext{Name: []byte("server thread"), Level: LevelInfo}))
	assert.False(t, g(LoggerContext{Name: []byte("Server thread "), Level: LevelInfo}))
}

func TestCandidate_GuardRunsFirst(t *testing.T) {
	c := candidate{kind: KindChat, guard: func(LoggerContext) bool { return false }}

	var ev Event
	err := c.attempt(nil, LoggerContext{}, []byte("<Steve> hi"), &ev)
	assert.ErrorIs(t, err, ErrGrammarNotApplicable)
	assert.Equal(t, Event{}, ev, "payload grammar must not run when the guard fails")
}

func TestCandidate_UnknownKind(t *testing.T) {
	c := candidate{kind: KindGeneric, guard: serverThreadInfo}

	var ev Event
	err := c.attempt(nil, LoggerContext{Name: []byte("Server thread"), Level: LevelInfo}, []byte("hello"), &ev)
	assert.ErrorIs(t, err, ErrGrammarNotApplicable)
	assert.Equal(t, Event{}, ev)
}

func TestCandidates_Order(t *testing.T) {
	want := []Kind{KindChat, KindJoin, KindLeave, KindAdvancement, KindDeath}
	require.Len(t, candidates, len(want))
	for i, c := range candidates {
		assert.Equal(t, want[i], c.kind, "candidate %d", i)
	}
}

func TestDispatch(t *testing.T) {
	p := testParser(t)
	info := LoggerContext{Name: []byte("Server thread"), Level: LevelInfo}

	tests := []struct {
		name     string
		ctx      LoggerContext
		payload  string
		wantKind Kind
		wantDiag error
	}{
		{name: "chat beats death", ctx: info, payload: "<Steve> Bob was slain by Zombie", wantKind: KindChat},
		{name: "join beats death", ctx: info, payload: "Steve joined the game", wantKind: KindJoin},
		{name: "death", ctx: info, payload: "Steve was shot by Skeleton", wantKind: KindDeath},
		{name: "exhausted", ctx: info, payload: "Saving the game (this may take a moment!)", wantKind: KindGeneric, wantDiag: ErrTemplateExhausted},
		{
			name:     "other level skips templates",
			ctx:      LoggerContext{Name: []byte("Server thread"), Level: LevelError},
			payload:  "Steve was shot by Skeleton",
			wantKind: KindGeneric,
		},
		{
			name:     "other logger skips templates",
			ctx:      LoggerContext{Name: []byte("Netty Epoll Server IO #1"), Level: LevelInfo},
			payload:  "Steve was shot by Skeleton",
			wantKind: KindGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev Event
			diag := p.dispatch(tt.ctx, []byte(tt.payload), &ev)
			if tt.wantDiag != nil {
				assert.ErrorIs(t, diag, tt.wantDiag)
			} else {
				assert.NoError(t, diag)
			}
			assert.Equal(t, tt.wantKind, ev.Kind)
			if tt.wantKind == KindGeneric {
				assert.Equal(t, tt.payload, string(ev.Message))
			}
		})
	}
}
