package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foyerapp/calsync/internal/model"
)

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Link, list and unlink external calendars",
	}
	cmd.AddCommand(newCalendarsAddCmd())
	cmd.AddCommand(newCalendarsListCmd())
	cmd.AddCommand(newCalendarsRemoveCmd())
	return cmd
}

func newCalendarsAddCmd() *cobra.Command {
	var (
		user       string
		provider   string
		direction  string
		name       string
		icalURL    string
		calendarID string
		meals      bool
		activities bool
		events     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Link a new external calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			cal := &model.ExternalCalendarConfig{
				UserID:         user,
				Provider:       model.CalendarProvider(provider),
				Direction:      model.SyncDirection(direction),
				Name:           name,
				ICalURL:        icalURL,
				CalendarID:     calendarID,
				SyncMeals:      meals,
				SyncActivities: activities,
				SyncEvents:     events,
				Active:         true,
			}
			id, err := a.engine.AddCalendar(ctx, cal)
			if err != nil {
				return err
			}
			fmt.Printf("linked calendar %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owning user id (required)")
	cmd.Flags().StringVar(&provider, "provider", string(model.ProviderGoogle), "provider: google, apple, outlook or ical_url")
	cmd.Flags().StringVar(&direction, "direction", string(model.DirectionBidirectional), "sync direction: import_only, export_only or bidirectional")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: \""+model.DefaultCalendarName+"\")")
	cmd.Flags().StringVar(&icalURL, "ical-url", "", "feed URL, required for the ical_url provider")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "", "remote calendar id (default: primary)")
	cmd.Flags().BoolVar(&meals, "meals", true, "export meals")
	cmd.Flags().BoolVar(&activities, "activities", true, "export family activities")
	cmd.Flags().BoolVar(&events, "events", true, "export generic events")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCalendarsListCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the calendars linked by a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			cals, err := a.engine.ListCalendarsForUser(ctx, user)
			if err != nil {
				return err
			}
			if len(cals) == 0 {
				fmt.Println("no linked calendars")
				return nil
			}
			for _, cal := range cals {
				state := "active"
				if !cal.Active {
					state = "inactive"
				}
				last := "never"
				if !cal.LastSync.IsZero() {
					last = cal.LastSync.Format("2006-01-02 15:04")
				}
				fmt.Printf("%s  %-8s %-13s %-9s last sync: %s  %s\n",
					cal.ID, cal.Provider, cal.Direction, state, last, cal.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCalendarsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <config-id>",
		Short: "Unlink a calendar; imported events stay behind as local events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.RemoveCalendar(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("unlinked calendar %s\n", args[0])
			return nil
		},
	}
}
