package reminder

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/tovaren/raido/internal/apperr"
)

// GoogleCalendar dispatches reminders to a Google Calendar using
// service-account credentials. The event timezone is a fixed configured
// zone, never derived from the entry or the user's locale.
type GoogleCalendar struct {
	svc        *calendar.Service
	calendarID string
	location   *time.Location
	timezone   string
}

var _ Dispatcher = (*GoogleCalendar)(nil)

// NewGoogleCalendar builds a dispatcher from a service-account credentials
// file. calendarID is usually "primary"; timezone is an IANA zone name.
func NewGoogleCalendar(ctx context.Context, credentialsFile, calendarID, timezone string) (*GoogleCalendar, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reminder: read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, b, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("reminder: parse credentials: %w", err)
	}
	svc, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("reminder: build calendar service: %w", err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("reminder: load timezone %q: %w", timezone, err)
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID, location: loc, timezone: timezone}, nil
}

// Create inserts a one-hour event and returns its html link.
func (g *GoogleCalendar) Create(_ context.Context, r Reminder) (string, error) {
	created, err := g.svc.Events.Insert(g.calendarID, buildEvent(r, g.location, g.timezone)).Do()
	if err != nil {
		return "", fmt.Errorf("%w: calendar insert: %v", apperr.ErrExternal, err)
	}
	return created.HtmlLink, nil
}

func buildEvent(r Reminder, loc *time.Location, timezone string) *calendar.Event {
	start := r.When.In(loc)
	return &calendar.Event{
		Summary:     r.Title,
		Description: r.Description,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: start.Add(EventDuration).Format(time.RFC3339),
			TimeZone: timezone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 10},
				{Method: "email", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}
