package parser

import (
	"bytes"

	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

// parseDeath tries every template of the parser's table in order and takes
// the first that matches.
func parseDeath(p *Parser, payload []byte, ev *Event) error {
	for i := range p.Templates.Len() {
		var c deathCapture
		if !c.match(p.Templates.At(i), payload) {
			continue
		}
		ev.Kind = KindDeath
		ev.Victim = c.victim
		ev.Attacker = c.attacker
		ev.Weapon = c.weapon
		return nil
	}
	return ErrTemplateExhausted
}

type deathCapture struct {
	victim, attacker, weapon []byte
}

// match runs a single forward pass of tmpl over in. A capturing slot that is
// followed by a literal takes the shortest non-empty prefix that ends where
// the literal first occurs; a capturing slot with no following literal takes
// the rest of the input. Any mismatch fails the whole template; slots are
// never re-split. Input left over after the last part is accepted.
func (c *deathCapture) match(tmpl lang.Template, in []byte) bool {
	rest := in
	if len(tmpl.Prefix) > 0 {
		if !bytes.HasPrefix(rest, tmpl.Prefix) {
			return false
		}
		rest = rest[len(tmpl.Prefix):]
	}

	for _, part := range tmpl.Parts {
		if part.Slot == lang.SlotEmpty && len(part.Literal) == 0 {
			continue
		}

		if part.Slot != lang.SlotEmpty {
			n := len(rest)
			if len(part.Literal) > 0 {
				if len(rest) < 1 {
					return false
				}
				i := bytes.Index(rest[1:], part.Literal)
				if i < 0 {
					return false
				}
				n = i + 1
			}
			c.bind(part.Slot, rest[:n])
			rest = rest[n:]
		}

		if len(part.Literal) > 0 {
			if !bytes.HasPrefix(rest, part.Literal) {
				return false
			}
			rest = rest[len(part.Literal):]
		}
	}
	return true
}

func (c *deathCapture) bind(slot lang.Slot, b []byte) {
	switch slot {
	case lang.SlotVictim:
		c.victim = b
	case lang.SlotAttacker:
		c.attacker = b
	case lang.SlotWeapon:
		c.weapon = b
	}
}
