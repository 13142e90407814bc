// Package policy decides which events the public site shows, in which
// order, and how statistics are rendered.
package policy

import (
	"sort"

	"magis-site/models"
)

type PublicEvent struct {
	models.Event
	Featured bool `json:"featured"`
}

// statusRank orders events by relevance: what is happening now, then what
// is coming, then what already happened. Unknown statuses go last.
func statusRank(status string) int {
	switch status {
	case models.EventOngoing:
		return 0
	case models.EventUpcoming:
		return 1
	case models.EventCompleted:
		return 2
	default:
		return 3
	}
}

// SelectPublicEvents drops cancelled events, orders the rest and flags the
// first one as featured. Equal keys keep their input order.
func SelectPublicEvents(events []models.Event) []PublicEvent {
	visible := make([]PublicEvent, 0, len(events))
	for _, e := range events {
		if e.IsCancelled() {
			continue
		}
		visible = append(visible, PublicEvent{Event: e})
	}

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		ra, rb := statusRank(a.Status), statusRank(b.Status)
		if ra != rb {
			return ra < rb
		}
		if a.Status == models.EventCompleted {
			return a.Date.After(b.Date)
		}
		return a.Date.Before(b.Date)
	})

	if len(visible) > 0 {
		visible[0].Featured = true
	}
	return visible
}

// EventsView is what the events section renders: one highlight card and
// the remaining events.
type EventsView struct {
	Featured *PublicEvent
	Others   []PublicEvent
}

func SplitFeatured(events []PublicEvent) EventsView {
	if len(events) == 0 {
		return EventsView{Others: []PublicEvent{}}
	}
	featured := events[0]
	return EventsView{
		Featured: &featured,
		Others:   events[1:],
	}
}

// Empty reports the neutral "no events" state.
func (v EventsView) Empty() bool {
	return v.Featured == nil
}

// ShowOthers is false when a single event remains; the page then shows
// only the featured card and the contact call-to-action.
func (v EventsView) ShowOthers() bool {
	return len(v.Others) > 0
}

// Upcoming returns at most n of the events that are ongoing or upcoming,
// keeping the given order. Used by the home page teaser.
func Upcoming(events []PublicEvent, n int) []PublicEvent {
	out := []PublicEvent{}
	for _, e := range events {
		if len(out) == n {
			break
		}
		if e.Status == models.EventOngoing || e.Status == models.EventUpcoming {
			out = append(out, e)
		}
	}
	return out
}
