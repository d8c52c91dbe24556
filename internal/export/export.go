// Package export renders stored events in interchange formats: a JSON dump
// matching the original flat record shape, and iCalendar for calendar apps.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"

	"github.com/trmanh/nhac/internal/nlp"
	"github.com/trmanh/nhac/internal/store"
)

// jsonEvent is the export record shape: every column, always emitted, with
// notified as a 0/1 integer, matching what older dumps of the database look
// like.
type jsonEvent struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	Location        string  `json:"location"`
	ReminderMinutes int     `json:"reminder_minutes"`
	Notified        int     `json:"notified"`
	RawText         string  `json:"raw_text"`
}

// WriteJSON writes every event as an indented JSON array.
func WriteJSON(w io.Writer, events []*store.Event) error {
	out := make([]jsonEvent, 0, len(events))
	for _, e := range events {
		var end *string
		if e.EndTime != nil {
			s := e.EndTime.Format(nlp.TimeLayout)
			end = &s
		}
		notified := 0
		if e.Notified {
			notified = 1
		}
		out = append(out, jsonEvent{
			ID:              e.ID,
			Title:           e.Title,
			StartTime:       e.StartTime.Format(nlp.TimeLayout),
			EndTime:         end,
			Location:        e.Location,
			ReminderMinutes: e.ReminderMinutes,
			Notified:        notified,
			RawText:         e.RawText,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	return nil
}

// icalTimeLayout is the floating local-time form of an iCalendar DATE-TIME.
// Stored timestamps carry no zone offset, so they are exported as floating
// times rather than forced to UTC.
const icalTimeLayout = "20060102T150405"

// WriteICS writes the events as an iCalendar VCALENDAR stream. Each event
// becomes a VEVENT with a display alarm at its reminder lead-time.
func WriteICS(w io.Writer, events []*store.Event) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//nhac//schedule assistant//VI")

	for _, e := range events {
		ve := cal.AddEvent(fmt.Sprintf("nhac-%d@nhac.local", e.ID))
		ve.SetProperty(ics.ComponentPropertyDtStart, e.StartTime.Format(icalTimeLayout))
		if e.EndTime != nil {
			ve.SetProperty(ics.ComponentPropertyDtEnd, e.EndTime.Format(icalTimeLayout))
		}
		ve.SetDtStampTime(e.CreatedAt)
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.RawText != "" {
			ve.SetDescription(e.RawText)
		}

		alarm := ve.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", e.ReminderMinutes))
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("serializing calendar: %w", err)
	}
	return nil
}
