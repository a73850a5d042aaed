// Package lang builds death-message templates from a Minecraft localization
// file (en_us.json) and holds the process-wide template table used by the
// line parser.
package lang

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrEntryMalformed is returned by ParseEntry for localization lines that look
// like death entries but cannot be turned into a template (bad quoting, no
// victim placeholder). Table builders skip such lines.
var ErrEntryMalformed = errors.New("malformed death template entry")

// Slot identifies what a template placeholder captures.
type Slot uint8

const (
	SlotEmpty Slot = iota
	SlotVictim
	SlotAttacker
	SlotWeapon
)

func (s Slot) String() string {
	switch s {
	case SlotVictim:
		return "victim"
	case SlotAttacker:
		return "attacker"
	case SlotWeapon:
		return "weapon"
	default:
		return "empty"
	}
}

// Placeholder tokens as they appear in the localization file.
var (
	victimToken   = []byte("%1$s")
	attackerToken = []byte("%2$s")
	weaponToken   = []byte("%3$s")
)

const tokenLen = 4

var (
	entryPrefix    = []byte(`"death.`)
	entrySeparator = []byte(`": "`)
)

// Part is a capturing slot followed by the literal text that comes after it.
type Part struct {
	Slot    Slot
	Literal []byte
}

// Template is one death-message phrasing: a literal prefix followed by up to
// three slots, each with the literal that follows it. Unused parts have
// SlotEmpty and an empty literal.
//
// A Template owns its byte slices; they are never modified after creation.
type Template struct {
	Key    string
	Prefix []byte
	Parts  [3]Part
}

// Slots returns the number of capturing slots.
func (t Template) Slots() int {
	n := 0
	for _, p := range t.Parts {
		if p.Slot != SlotEmpty {
			n++
		}
	}
	return n
}

// String renders the template back into placeholder form.
func (t Template) String() string {
	var b bytes.Buffer
	b.Write(t.Prefix)
	for _, p := range t.Parts {
		switch p.Slot {
		case SlotVictim:
			b.Write(victimToken)
		case SlotAttacker:
			b.Write(attackerToken)
		case SlotWeapon:
			b.Write(weaponToken)
		}
		b.Write(p.Literal)
	}
	return b.String()
}

type placeholder struct {
	pos  int
	slot Slot
}

// NewTemplate builds a template from localization text such as
// "%1$s was slain by %2$s using %3$s". The text must contain %1$s.
func NewTemplate(key string, text []byte) (Template, error) {
	victim := bytes.Index(text, victimToken)
	if victim < 0 {
		return Template{}, fmt.Errorf("%w: %s: no victim placeholder", ErrEntryMalformed, key)
	}

	// Slots not present sit at len(text) so they sort last.
	end := len(text)
	order := [3]placeholder{
		{victim, SlotVictim},
		{end, SlotEmpty},
		{end, SlotEmpty},
	}
	n := 1
	insert := func(ph placeholder) {
		i := n
		for i > 0 && order[i-1].pos > ph.pos {
			order[i] = order[i-1]
			i--
		}
		order[i] = ph
		n++
	}
	if pos := bytes.Index(text, attackerToken); pos >= 0 {
		insert(placeholder{pos, SlotAttacker})
	}
	if pos := bytes.Index(text, weaponToken); pos >= 0 {
		insert(placeholder{pos, SlotWeapon})
	}

	t := Template{
		Key:    key,
		Prefix: bytes.Clone(text[:order[0].pos]),
	}
	for i, ph := range order {
		t.Parts[i].Slot = ph.slot
		start := ph.pos + tokenLen
		if start >= end {
			continue
		}
		stop := end
		if i+1 < len(order) {
			stop = order[i+1].pos
		}
		t.Parts[i].Literal = bytes.Clone(text[start:stop])
	}
	return t, nil
}

// ParseEntry extracts a template from one localization line. It returns
// ok=false for lines that are not death entries at all, and
// ErrEntryMalformed for death entries that cannot be used.
func ParseEntry(line []byte) (t Template, ok bool, err error) {
	trimmed := bytes.TrimLeft(line, " \t")
	if !bytes.HasPrefix(trimmed, entryPrefix) {
		return Template{}, false, nil
	}

	key, rest, found := bytes.Cut(trimmed[1:], entrySeparator)
	if !found {
		return Template{}, true, fmt.Errorf("%w: missing separator", ErrEntryMalformed)
	}
	closing := bytes.LastIndexByte(rest, '"')
	if closing < 0 {
		return Template{}, true, fmt.Errorf("%w: %s: unterminated string", ErrEntryMalformed, key)
	}

	t, err = NewTemplate(string(key), rest[:closing])
	return t, true, err
}
