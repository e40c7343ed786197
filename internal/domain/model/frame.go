package model

// Frame kinds as they appear in the outbound newline-delimited stream.
const (
	FrameEvent        = "event"
	FrameMinuteUpdate = "minute_update"
)

// EventBody is the nested event record inside an event frame.
type EventBody struct {
	Team        string `json:"team"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Frame is one line of the outbound match stream: either a scheduled
// event with the post-update score/stats snapshot attached, or a
// lightweight minute tick between events. Frames are immutable once
// emitted.
type Frame struct {
	Kind   string     `json:"type"`
	Minute int        `json:"minute"`
	Event  *EventBody `json:"event,omitempty"`
	Score  Score      `json:"score"`
	Stats  MatchStats `json:"stats"`
}

// NewTickFrame builds a minute_update frame from the current snapshot.
func NewTickFrame(minute int, score Score, stats MatchStats) Frame {
	return Frame{
		Kind:   FrameMinuteUpdate,
		Minute: minute,
		Score:  score,
		Stats:  stats,
	}
}

// NewEventFrame builds an event frame carrying the post-update snapshot.
func NewEventFrame(ev TimelineEvent, description string, score Score, stats MatchStats) Frame {
	return Frame{
		Kind:   FrameEvent,
		Minute: ev.Minute(),
		Event: &EventBody{
			Team:        string(ev.Side()),
			Type:        string(ev.Type()),
			Description: description,
		},
		Score: score,
		Stats: stats,
	}
}
