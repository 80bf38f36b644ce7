package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/models"
)

func newReservationsCommand(rt *runtime) *cobra.Command {
	reservations := &cobra.Command{Use: "reservations", Aliases: []string{"res"}, Short: "Book and manage reservations"}

	var filter clients.ReservationFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List reservations (all users for admins)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			page, err := rt.app.Client.Reservations.List(cmd.Context(), filter, token)
			if err != nil {
				return err
			}
			return rt.print(page)
		},
	}
	bindReservationFilter(list, &filter, true)

	var mineFilter clients.ReservationFilter
	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			page, err := rt.app.Client.Reservations.Mine(cmd.Context(), mineFilter, token)
			if err != nil {
				return err
			}
			return rt.print(page)
		},
	}
	bindReservationFilter(mine, &mineFilter, false)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			token, err := rt.token()
			if err != nil {
				return err
			}
			reservation, err := rt.app.Client.Reservations.Get(cmd.Context(), id, token)
			if err != nil {
				return err
			}
			return rt.print(reservation)
		},
	}

	var fieldID int64
	var start, notes string
	var duration int
	create := &cobra.Command{
		Use:   "create",
		Short: "Book a field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			startTime, err := models.ParseTimestamp(start)
			if err != nil {
				return err
			}
			reservation, err := rt.app.Client.Reservations.Create(cmd.Context(), models.ReservationCreateRequest{
				FieldID:       fieldID,
				StartTime:     startTime,
				DurationHours: duration,
				Notes:         notes,
			}, token)
			if err != nil {
				return err
			}
			return rt.print(reservation)
		},
	}
	cf := create.Flags()
	cf.Int64Var(&fieldID, "field", 0, "field id")
	cf.StringVar(&start, "start", "", "start time YYYY-MM-DDTHH:MM")
	cf.IntVar(&duration, "hours", 1, "duration in hours")
	cf.StringVar(&notes, "notes", "", "notes")
	_ = create.MarkFlagRequired("field")
	_ = create.MarkFlagRequired("start")

	var upField int64
	var upStart, upNotes string
	var upDuration int
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a reservation; only given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			token, err := rt.token()
			if err != nil {
				return err
			}
			var req models.ReservationUpdateRequest
			f := cmd.Flags()
			if f.Changed("field") {
				req.FieldID = &upField
			}
			if f.Changed("start") {
				ts, err := models.ParseTimestamp(upStart)
				if err != nil {
					return err
				}
				req.StartTime = &ts
			}
			if f.Changed("hours") {
				req.DurationHours = &upDuration
			}
			if f.Changed("notes") {
				req.Notes = &upNotes
			}
			reservation, err := rt.app.Client.Reservations.Update(cmd.Context(), id, req, token)
			if err != nil {
				return err
			}
			return rt.print(reservation)
		},
	}
	uf := update.Flags()
	uf.Int64Var(&upField, "field", 0, "field id")
	uf.StringVar(&upStart, "start", "", "start time YYYY-MM-DDTHH:MM")
	uf.IntVar(&upDuration, "hours", 1, "duration in hours")
	uf.StringVar(&upNotes, "notes", "", "notes")

	var reason string
	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			token, err := rt.token()
			if err != nil {
				return err
			}
			reservation, err := rt.app.Client.Reservations.Cancel(cmd.Context(), id, reason, token)
			if err != nil {
				return err
			}
			return rt.print(reservation)
		},
	}
	cancel.Flags().StringVar(&reason, "reason", "Cancelada por el usuario", "cancellation reason")

	var checkField int64
	var checkDate, checkStart string
	var checkHours int
	check := &cobra.Command{
		Use:   "check",
		Short: "Check whether a slot is free",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Reservations.CheckAvailability(cmd.Context(), checkField, checkDate, checkStart, checkHours, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	kf := check.Flags()
	kf.Int64Var(&checkField, "field", 0, "field id")
	kf.StringVar(&checkDate, "date", "", "date YYYY-MM-DD")
	kf.StringVar(&checkStart, "start", "", "start time HH:MM")
	kf.IntVar(&checkHours, "hours", 1, "duration in hours")
	_ = check.MarkFlagRequired("field")
	_ = check.MarkFlagRequired("date")
	_ = check.MarkFlagRequired("start")

	var byDate string
	byField := &cobra.Command{
		Use:   "by-field <field-id>",
		Short: "List reservations of a field on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			day, err := rt.app.Client.Reservations.ForFieldOnDate(cmd.Context(), id, byDate)
			if err != nil {
				return err
			}
			return rt.print(day)
		},
	}
	byField.Flags().StringVar(&byDate, "date", "", "date YYYY-MM-DD")
	_ = byField.MarkFlagRequired("date")

	reservations.AddCommand(list, mine, get, create, update, cancel, check, byField)
	return reservations
}

func bindReservationFilter(cmd *cobra.Command, filter *clients.ReservationFilter, full bool) {
	f := cmd.Flags()
	f.IntVar(&filter.Page, "page", 1, "page number")
	f.IntVar(&filter.Limit, "limit", 10, "page size")
	f.StringVar(&filter.Status, "status", "", fmt.Sprintf("status filter (%s, %s, %s, %s or all)",
		models.StatusConfirmed, models.StatusCancelled, models.StatusPending, models.StatusCompleted))
	if full {
		f.Int64Var(&filter.FieldID, "field", 0, "field id")
		f.Int64Var(&filter.UserID, "user", 0, "user id")
	}
}
