package cli

import (
	"github.com/spf13/cobra"

	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/models"
)

func newAdminCommand(rt *runtime) *cobra.Command {
	admin := &cobra.Command{Use: "admin", Short: "Administration dashboards"}

	var userFilter clients.AdminUserFilter
	var role string
	var activeOnly, inactiveOnly, fromAuth bool
	users := &cobra.Command{
		Use:   "users",
		Short: "List users with reservation totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			if fromAuth {
				page, err := rt.app.Client.Auth.ListUsers(cmd.Context(), token)
				if err != nil {
					return err
				}
				return rt.print(page)
			}
			userFilter.Role = role
			switch {
			case activeOnly:
				v := true
				userFilter.IsActive = &v
			case inactiveOnly:
				v := false
				userFilter.IsActive = &v
			}
			page, err := rt.app.Client.Dashboard.Users(cmd.Context(), userFilter, token)
			if err != nil {
				return err
			}
			return rt.print(page)
		},
	}
	uf := users.Flags()
	uf.IntVar(&userFilter.Page, "page", 1, "page number")
	uf.IntVar(&userFilter.Limit, "limit", 20, "page size")
	uf.StringVar(&role, "role", "", "role filter")
	uf.BoolVar(&activeOnly, "active", false, "only active users")
	uf.BoolVar(&inactiveOnly, "inactive", false, "only inactive users")
	uf.BoolVar(&fromAuth, "basic", false, "plain listing from the auth service")
	users.MarkFlagsMutuallyExclusive("active", "inactive")

	var newAdmin models.UserCreateAdmin
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			pw, err := rt.secret(newAdmin.Password, "password")
			if err != nil {
				return err
			}
			newAdmin.Password = pw
			user, err := rt.app.Client.Auth.RegisterAdmin(cmd.Context(), newAdmin, token)
			if err != nil {
				return err
			}
			return rt.print(user)
		},
	}
	rf := register.Flags()
	rf.StringVar(&newAdmin.Username, "username", "", "username")
	rf.StringVar(&newAdmin.Email, "email", "", "e-mail")
	rf.StringVar(&newAdmin.Password, "password", "", "password (read from stdin when omitted)")
	_ = register.MarkFlagRequired("username")
	_ = register.MarkFlagRequired("email")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Headline counters and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Dashboard.Stats(cmd.Context(), token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}

	overview := &cobra.Command{
		Use:   "overview",
		Short: "Stats, field stats and service health fetched together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Dashboard.Overview(cmd.Context(), token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}

	var resFilter clients.AdminReservationFilter
	reservations := &cobra.Command{
		Use:   "reservations",
		Short: "Reservations of every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			page, err := rt.app.Client.Dashboard.Reservations(cmd.Context(), resFilter, token)
			if err != nil {
				return err
			}
			return rt.print(page)
		},
	}
	af := reservations.Flags()
	af.IntVar(&resFilter.Page, "page", 1, "page number")
	af.IntVar(&resFilter.Limit, "limit", 20, "page size")
	af.StringVar(&resFilter.Status, "status", "", "status filter")
	af.Int64Var(&resFilter.FieldID, "field", 0, "field id")
	af.StringVar(&resFilter.DateFrom, "from", "", "from date YYYY-MM-DD")
	af.StringVar(&resFilter.DateTo, "to", "", "to date YYYY-MM-DD")

	fieldsStats := &cobra.Command{
		Use:   "fields-stats",
		Short: "Per-field statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Dashboard.FieldsStats(cmd.Context(), token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}

	var days int
	revenue := &cobra.Command{
		Use:   "revenue",
		Short: "Daily revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Dashboard.DailyRevenue(cmd.Context(), days, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	revenue.Flags().IntVar(&days, "days", 30, "period in days")

	health := &cobra.Command{
		Use:   "health",
		Short: "Health of every backend service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Dashboard.HealthCheck(cmd.Context(), token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}

	admin.AddCommand(users, register, stats, overview, reservations, fieldsStats, revenue, health)
	return admin
}
