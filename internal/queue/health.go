// Package queue computes chat-queue load against the agents currently on chat.
package queue

import (
	"math"

	"github.com/dennisdiepolder/availability/internal/intensity"
	"github.com/dennisdiepolder/availability/internal/types"
)

// Capacity holds the staffing constants. They are operational settings, not
// derived values.
type Capacity struct {
	ChatsPerAgent  int `yaml:"chatsPerAgent" json:"chatsPerAgent"`
	BufferPercent  int `yaml:"bufferPercent" json:"bufferPercent"`
	BaselineAgents int `yaml:"baselineAgents" json:"baselineAgents"`
}

// DefaultCapacity returns the capacity used when none is configured
func DefaultCapacity() Capacity {
	return Capacity{
		ChatsPerAgent:  6,
		BufferPercent:  20,
		BaselineAgents: 1,
	}
}

// withDefaults fills zero values so a partial config cannot divide by zero
func (c Capacity) withDefaults() Capacity {
	d := DefaultCapacity()
	if c.ChatsPerAgent <= 0 {
		c.ChatsPerAgent = d.ChatsPerAgent
	}
	if c.BufferPercent < 0 {
		c.BufferPercent = 0
	}
	if c.BaselineAgents < 0 {
		c.BaselineAgents = 0
	}
	return c
}

// Recommended returns how many agents should be on chat for open conversations
func (c Capacity) Recommended(open int) int {
	c = c.withDefaults()
	if open <= 0 {
		return c.BaselineAgents
	}
	need := float64(open) / float64(c.ChatsPerAgent) * (1 + float64(c.BufferPercent)/100)
	// round away float noise before ceil so 6 chats at 0% buffer is exactly one agent
	need = math.Round(need*1e9) / 1e9
	return int(math.Ceil(need)) + c.BaselineAgents
}

// Health builds the queue gauge. Intensity follows the unassigned count, the
// number of chats actually waiting for an agent.
func Health(unassigned, open, chattingAgents int, c Capacity) types.QueueHealth {
	c = c.withDefaults()
	if unassigned < 0 {
		unassigned = 0
	}
	if open < 0 {
		open = 0
	}

	h := types.QueueHealth{
		Unassigned:        unassigned,
		Open:              open,
		ChattingAgents:    chattingAgents,
		Capacity:          chattingAgents * c.ChatsPerAgent,
		RecommendedAgents: c.Recommended(open),
	}

	if h.Capacity > 0 {
		h.UtilizationPct = math.Round(float64(open)/float64(h.Capacity)*1000) / 10
	} else if open > 0 {
		h.UtilizationPct = 100
	}

	h.Intensity = intensity.FromCount(float64(unassigned))
	h.Hue = intensity.Hue(float64(h.Intensity))
	return h
}
