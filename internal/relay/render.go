package relay

import (
	"net/url"
	"strings"

	"github.com/gluemc/gluemc-go/pkg/mclog/event"
)

const (
	// DefaultAvatarURL is the avatar template; {name} is replaced with the
	// escaped player name.
	DefaultAvatarURL = "https://skinatar.firstdark.dev/avatar/{name}"

	// ConsoleName is the username for server notices and console output.
	ConsoleName = "Console"

	// serverSender is the chat sender for /say from the console.
	serverSender = "[Server]"
)

// Renderer turns events into messages.
type Renderer struct {
	// AvatarURL is the avatar template. Empty means DefaultAvatarURL.
	AvatarURL string
}

// Avatar returns the avatar URL for a player name.
func (r Renderer) Avatar(name string) string {
	tmpl := r.AvatarURL
	if tmpl == "" {
		tmpl = DefaultAvatarURL
	}
	return strings.ReplaceAll(tmpl, "{name}", url.PathEscape(name))
}

// Render returns the notification for ev. Only chat, join, leave,
// advancement and death events produce one.
func (r Renderer) Render(ev event.Event) (Message, bool) {
	switch ev.Type {
	case event.TypeChat:
		avatar := r.Avatar(ev.Sender)
		if ev.Sender == serverSender {
			avatar = r.Avatar(ConsoleName)
		}
		return Message{Username: ev.Sender, AvatarURL: avatar, Content: ev.Message}, true
	case event.TypeJoin:
		return r.announce(ev.Player, ev.Player+" joined", ColorGreen), true
	case event.TypeLeave:
		return r.announce(ev.Player, ev.Player+" left", ColorRed), true
	case event.TypeAdvancement:
		return r.announce(ev.Player, ev.Text, ColorYellow), true
	case event.TypeDeath:
		return r.announce(ev.Victim, ev.Text, ColorRed), true
	}
	return Message{}, false
}

// Notice is a console-authored announcement such as "Starting server".
func (r Renderer) Notice(text string, color int) Message {
	return Message{
		Username:  ConsoleName,
		AvatarURL: r.Avatar(ConsoleName),
		Embeds:    []Embed{{Author: &EmbedAuthor{Name: text}, Color: color}},
	}
}

func (r Renderer) announce(player, text string, color int) Message {
	avatar := r.Avatar(player)
	return Message{
		Username:  player,
		AvatarURL: avatar,
		Embeds:    []Embed{{Author: &EmbedAuthor{Name: text, IconURL: avatar}, Color: color}},
	}
}
