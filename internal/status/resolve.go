package status

import (
	"strings"

	"github.com/dennisdiepolder/availability/internal/roster"
	"github.com/dennisdiepolder/availability/internal/types"
)

// Decision is the status picked for one agent
type Decision struct {
	Status types.AgentStatus
	Label  string
	Emoji  string
	Source types.StatusSource
	Zoom   bool
}

// Decide applies the status precedence: live text, then out of office, then
// a finished day, then the hour code table.
func Decide(code types.HourCode, ooo bool, liveText string) Decision {
	if text := strings.TrimSpace(liveText); text != "" {
		l := ParseLive(text)
		return Decision{
			Status: l.Status,
			Label:  l.Label,
			Emoji:  l.Emoji,
			Source: types.SourceLive,
			Zoom:   l.Zoom,
		}
	}

	if ooo {
		return Decision{Status: types.StatusAway, Label: labelOutOfOffice, Emoji: emojiOutOfOffice, Source: types.SourceOOO}
	}
	if code == types.HourDone {
		return Decision{Status: types.StatusAway, Label: labelDoneForDay, Emoji: emojiDoneForDay, Source: types.SourceSchedule}
	}

	d := Decision{Status: types.StatusAway, Label: defaultLabel[types.StatusAway], Source: types.SourceSchedule}
	if hr, ok := hourRules[code]; ok {
		d.Status, d.Label = hr.status, hr.label
	}
	d.Emoji = defaultEmoji[d.Status]
	return d
}

// Ring classifies schedule-vs-reality alignment. It depends only on the hour
// code, the out-of-office flag and the live text.
func Ring(code types.HourCode, ooo bool, liveText string) types.RingColor {
	text := strings.TrimSpace(liveText)

	var live Live
	if text != "" {
		live = ParseLive(text)
		if live.Zoom {
			return types.RingZoom
		}
	}

	if code != types.HourChat {
		return types.RingPurple
	}
	if text == "" {
		if ooo {
			return types.RingPurple
		}
		return types.RingOrange
	}

	switch live.Status {
	case types.StatusChat:
		return types.RingGreen
	case types.StatusLunch:
		return types.RingYellow
	default:
		return types.RingRed
	}
}

// Resolve reconciles the decoded sources into one ResolvedAgent per roster
// person holding a valid hour code. Source names that match nobody are
// dropped. When a source lists the same person twice the first row wins.
func Resolve(r *roster.Roster, schedule []types.ScheduleRow, live []types.LiveStatusRow, ooo []string) []types.ResolvedAgent {
	rows := make(map[string]types.ScheduleRow, len(schedule))
	for _, row := range schedule {
		p, ok := r.Lookup(row.PersonName)
		if !ok {
			continue
		}
		if _, seen := rows[p.Name]; !seen {
			rows[p.Name] = row
		}
	}

	statuses := make(map[string]types.LiveStatusRow, len(live))
	for _, row := range live {
		p, ok := r.Lookup(row.PersonName)
		if !ok {
			continue
		}
		if _, seen := statuses[p.Name]; !seen {
			statuses[p.Name] = row
		}
	}

	away := make(map[string]bool, len(ooo))
	for _, name := range ooo {
		if p, ok := r.Lookup(name); ok {
			away[p.Name] = true
		}
	}

	agents := make([]types.ResolvedAgent, 0, len(rows))
	for _, p := range r.People() {
		row, ok := rows[p.Name]
		if !ok || !row.HourCode.Valid() {
			continue
		}

		isOOO := row.OutOfOffice || away[p.Name]
		st := statuses[p.Name]
		d := Decide(row.HourCode, isOOO, st.RawStatusText)

		minutes := 0
		if d.Source == types.SourceLive {
			minutes = st.MinutesInStatus
		}

		agents = append(agents, types.ResolvedAgent{
			Person:          p,
			Status:          d.Status,
			Ring:            Ring(row.HourCode, isOOO, st.RawStatusText),
			StatusLabel:     d.Label,
			StatusEmoji:     d.Emoji,
			MinutesInStatus: minutes,
			HourCode:        row.HourCode,
			OutOfOffice:     isOOO,
			Source:          d.Source,
		})
	}
	return agents
}
