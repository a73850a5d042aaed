// Package relay turns server log events into chat notifications and posts
// them to webhooks.
package relay

// Embed colors (Discord branding palette).
const (
	ColorGreen  = 0x57F287
	ColorYellow = 0xFEE75C
	ColorRed    = 0xED4245
)

// Message is a webhook payload in the Discord execute-webhook format.
type Message struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// Embed is a rich notification. Only the author line and color are used.
type Embed struct {
	Author *EmbedAuthor `json:"author,omitempty"`
	Color  int          `json:"color,omitempty"`
}

// EmbedAuthor is the headline of an embed.
type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// headline returns the author line of the first embed, or "".
func (m Message) headline() string {
	if len(m.Embeds) == 0 || m.Embeds[0].Author == nil {
		return ""
	}
	return m.Embeds[0].Author.Name
}
