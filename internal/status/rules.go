// Package status reconciles schedule, out-of-office and live chat status into
// one status and ring colour per agent.
package status

import (
	"strings"

	"github.com/dennisdiepolder/availability/internal/types"
)

// rule is one row of the live-status keyword table. Rules are evaluated top
// to bottom and the first match wins.
type rule struct {
	name     string
	keywords []string
	status   types.AgentStatus
	zoom     bool
}

var liveRules = []rule{
	{name: "available", keywords: []string{"available"}, status: types.StatusChat},
	{name: "break", keywords: []string{"lunch", "break"}, status: types.StatusLunch},
	{name: "zoom", keywords: []string{"zoom", "🖥"}, status: types.StatusCall, zoom: true},
	{name: "closing", keywords: []string{"off chat", "closing"}, status: types.StatusClosing},
}

func (r rule) matches(lower string) bool {
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// hourRules maps schedule hour codes to a status and label
var hourRules = map[types.HourCode]struct {
	status types.AgentStatus
	label  string
}{
	types.HourChat:    {types.StatusChat, "On chat"},
	types.HourClosing: {types.StatusClosing, "Closing out"},
	types.HourFocus:   {types.StatusCall, "Focus time"},
	types.HourLunch:   {types.StatusLunch, "Lunch"},
}

// knownEmoji is searched in live status text; the earliest occurrence wins
var knownEmoji = []string{
	"🖥️", "🖥", "💻", "📞", "🎧", "☕", "🍔", "🍕", "🥪", "🍜",
	"🟢", "✅", "💬", "🔴", "⛔", "🌙", "🏠", "🌴", "🤒", "🚪", "⏸️",
}

var defaultEmoji = map[types.AgentStatus]string{
	types.StatusChat:    "💬",
	types.StatusLunch:   "🍔",
	types.StatusCall:    "📞",
	types.StatusClosing: "🌙",
	types.StatusAway:    "🚪",
}

var defaultLabel = map[types.AgentStatus]string{
	types.StatusChat:    "Chatting",
	types.StatusLunch:   "On a break",
	types.StatusCall:    "On a call",
	types.StatusClosing: "Closing out",
	types.StatusAway:    "Away",
}

const (
	zoomEmoji = "🖥️"
	zoomLabel = "On Zoom"

	labelOutOfOffice = "Out of office"
	labelDoneForDay  = "Done for day"
	emojiOutOfOffice = "🌴"
	emojiDoneForDay  = "🌙"
)

// Live is the parsed form of a free-text live status
type Live struct {
	Status types.AgentStatus
	Zoom   bool
	Rule   string
	Emoji  string
	Label  string
}

// ParseLive applies the keyword table to a live status text
func ParseLive(text string) Live {
	lower := strings.ToLower(text)

	l := Live{Status: types.StatusAway, Rule: "default"}
	for _, r := range liveRules {
		if r.matches(lower) {
			l.Status, l.Zoom, l.Rule = r.status, r.zoom, r.name
			break
		}
	}

	emoji, label := splitEmoji(text)
	switch {
	case emoji != "":
		l.Emoji = emoji
	case l.Zoom:
		l.Emoji = zoomEmoji
	default:
		l.Emoji = defaultEmoji[l.Status]
	}

	switch {
	case label != "":
		l.Label = label
	case l.Zoom:
		l.Label = zoomLabel
	default:
		l.Label = defaultLabel[l.Status]
	}
	return l
}

// splitEmoji returns the first known emoji in text and the text with every
// known emoji removed
func splitEmoji(text string) (string, string) {
	first, at := "", -1
	for _, e := range knownEmoji {
		if i := strings.Index(text, e); i >= 0 && (at < 0 || i < at) {
			first, at = e, i
		}
	}

	label := text
	for _, e := range knownEmoji {
		label = strings.ReplaceAll(label, e, " ")
	}
	// strip a dangling variation selector left behind by the plain forms
	label = strings.ReplaceAll(label, "\uFE0F", "")
	return first, strings.Join(strings.Fields(label), " ")
}
