package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"fieldbook/services/portal/internal/models"
)

func newFieldsCommand(rt *runtime) *cobra.Command {
	fields := &cobra.Command{Use: "fields", Short: "Browse and manage fields"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			page, err := rt.app.Client.Fields.List(cmd.Context(), token)
			if err != nil {
				return err
			}
			return rt.print(page)
		},
	}

	var create models.FieldCreateRequest
	var inactive bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a field (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			active := !inactive
			create.IsActive = &active
			field, err := rt.app.Client.Fields.Create(cmd.Context(), create, token)
			if err != nil {
				return err
			}
			return rt.print(field)
		},
	}
	cf := createCmd.Flags()
	cf.StringVar(&create.Name, "name", "", "field name")
	cf.StringVar(&create.Location, "location", "", "location")
	cf.IntVar(&create.Capacity, "capacity", 10, "players")
	cf.Float64Var(&create.PricePerHour, "price", 0, "price per hour")
	cf.StringVar(&create.Description, "description", "", "description")
	cf.StringVar(&create.OpeningTime, "opens", "08:00", "opening time HH:MM")
	cf.StringVar(&create.ClosingTime, "closes", "22:00", "closing time HH:MM")
	cf.BoolVar(&inactive, "inactive", false, "create the field disabled")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("location")
	_ = createCmd.MarkFlagRequired("price")

	var name, location, description, opens, closes string
	var capacity int
	var price float64
	var active bool
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a field (admin); only given flags are sent",
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
			var req models.FieldUpdateRequest
			f := cmd.Flags()
			if f.Changed("name") {
				req.Name = &name
			}
			if f.Changed("location") {
				req.Location = &location
			}
			if f.Changed("description") {
				req.Description = &description
			}
			if f.Changed("opens") {
				req.OpeningTime = &opens
			}
			if f.Changed("closes") {
				req.ClosingTime = &closes
			}
			if f.Changed("capacity") {
				req.Capacity = &capacity
			}
			if f.Changed("price") {
				req.PricePerHour = &price
			}
			if f.Changed("active") {
				req.IsActive = &active
			}
			field, err := rt.app.Client.Fields.Update(cmd.Context(), id, req, token)
			if err != nil {
				return err
			}
			return rt.print(field)
		},
	}
	uf := update.Flags()
	uf.StringVar(&name, "name", "", "field name")
	uf.StringVar(&location, "location", "", "location")
	uf.StringVar(&description, "description", "", "description")
	uf.StringVar(&opens, "opens", "", "opening time HH:MM")
	uf.StringVar(&closes, "closes", "", "closing time HH:MM")
	uf.IntVar(&capacity, "capacity", 0, "players")
	uf.Float64Var(&price, "price", 0, "price per hour")
	uf.BoolVar(&active, "active", true, "enable or disable the field")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a field (admin)",
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
			msg, err := rt.app.Client.Fields.Delete(cmd.Context(), id, token)
			if err != nil {
				return err
			}
			return rt.print(msg)
		},
	}

	var date string
	availability := &cobra.Command{
		Use:   "availability <id>",
		Short: "Show free hours of a field on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Fields.Availability(cmd.Context(), id, date)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	availability.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD")
	_ = availability.MarkFlagRequired("date")

	fields.AddCommand(list, createCmd, update, del, availability)
	return fields
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
