// Package model contains domain models passed between layers.
package model

// Side identifies which team an event belongs to.
type Side string

// Side values. SideNone is used for markers and ticks that carry no team.
const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideNone Side = "info"
)

// Opponent returns the opposing side. SideNone has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideNone
	}
}

// EventType classifies a timeline event on the wire.
type EventType string

// Event type values as they appear in the outbound stream.
const (
	EventGoal         EventType = "goal"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventSubstitution EventType = "substitution"
	EventShot         EventType = "shot"
	EventTarget       EventType = "target"
	EventHalfTime     EventType = "half-time"
	EventFullTime     EventType = "full-time"
	EventMinuteTick   EventType = "minute_update"
)

// CardColor distinguishes yellow from red cards.
type CardColor string

// Card colors.
const (
	CardYellow CardColor = "yellow"
	CardRed    CardColor = "red"
)

// Match timing constants. Minutes are 1-indexed; minute 0 never appears
// on an emitted event.
const (
	FirstHalfStart  = 1
	HalfTimeMinute  = 45
	SecondHalfStart = 46
	FullTimeMinute  = 90
)

// TimelineEvent is one scheduled item in a generated half. The concrete
// variants are Goal, Card, Substitution, HalfTimeMarker, FullTimeMarker
// and MinuteTick.
type TimelineEvent interface {
	Minute() int
	Side() Side
	Type() EventType
}

// Goal is a goal scored by one team.
type Goal struct {
	AtMinute int
	Team     Side
}

func (g Goal) Minute() int     { return g.AtMinute }
func (g Goal) Side() Side      { return g.Team }
func (g Goal) Type() EventType { return EventGoal }

// Card is a booking. A red card may be scheduled minutes after the
// yellow that provoked it, possibly in the following half.
type Card struct {
	AtMinute int
	Team     Side
	Color    CardColor
}

func (c Card) Minute() int { return c.AtMinute }
func (c Card) Side() Side  { return c.Team }

func (c Card) Type() EventType {
	if c.Color == CardRed {
		return EventRedCard
	}
	return EventYellowCard
}

// Substitution is a player swap by one team.
type Substitution struct {
	AtMinute int
	Team     Side
}

func (s Substitution) Minute() int     { return s.AtMinute }
func (s Substitution) Side() Side      { return s.Team }
func (s Substitution) Type() EventType { return EventSubstitution }

// HalfTimeMarker delimits the first half. Its minute is fixed.
type HalfTimeMarker struct{}

func (HalfTimeMarker) Minute() int     { return HalfTimeMinute }
func (HalfTimeMarker) Side() Side      { return SideNone }
func (HalfTimeMarker) Type() EventType { return EventHalfTime }

// FullTimeMarker delimits the match. Its minute includes injury time.
type FullTimeMarker struct {
	AtMinute int
}

func (f FullTimeMarker) Minute() int   { return f.AtMinute }
func (FullTimeMarker) Side() Side      { return SideNone }
func (FullTimeMarker) Type() EventType { return EventFullTime }

// MinuteTick is a clock tick between scheduled events. Ticks are framing
// for consumers, not part of the generated timeline.
type MinuteTick struct {
	AtMinute int
}

func (t MinuteTick) Minute() int   { return t.AtMinute }
func (MinuteTick) Side() Side      { return SideNone }
func (MinuteTick) Type() EventType { return EventMinuteTick }
