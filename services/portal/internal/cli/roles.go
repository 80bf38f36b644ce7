package cli

import (
	"github.com/spf13/cobra"

	"fieldbook/services/portal/internal/models"
)

func newRolesCommand(rt *runtime) *cobra.Command {
	roles := &cobra.Command{Use: "roles", Short: "Manage roles and permissions (admin)"}

	var role models.RoleCreateRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Roles.CreateRole(cmd.Context(), role, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	create.Flags().StringVar(&role.Name, "name", "", "role name")
	create.Flags().StringVar(&role.Description, "description", "", "description")
	create.Flags().BoolVar(&role.IsActive, "active", true, "role is active")
	_ = create.MarkFlagRequired("name")

	var perm models.PermissionCreateRequest
	permission := &cobra.Command{
		Use:   "permission",
		Short: "Create a permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Roles.CreatePermission(cmd.Context(), perm, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	pf := permission.Flags()
	pf.StringVar(&perm.Name, "name", "", "permission name")
	pf.StringVar(&perm.Description, "description", "", "description")
	pf.StringVar(&perm.Resource, "resource", "", "resource, e.g. fields")
	pf.StringVar(&perm.Action, "action", "", "action, e.g. create")
	pf.BoolVar(&perm.IsActive, "active", true, "permission is active")
	_ = permission.MarkFlagRequired("name")
	_ = permission.MarkFlagRequired("resource")
	_ = permission.MarkFlagRequired("action")

	var userID, roleID int64
	assign := &cobra.Command{
		Use:   "assign",
		Short: "Assign a role to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Roles.AssignRole(cmd.Context(), userID, roleID, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	assign.Flags().Int64Var(&userID, "user", 0, "user id")
	assign.Flags().Int64Var(&roleID, "role", 0, "role id")
	_ = assign.MarkFlagRequired("user")
	_ = assign.MarkFlagRequired("role")

	var grantRole, permissionID int64
	grant := &cobra.Command{
		Use:   "grant",
		Short: "Attach a permission to a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Roles.AssignPermission(cmd.Context(), grantRole, permissionID, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	grant.Flags().Int64Var(&grantRole, "role", 0, "role id")
	grant.Flags().Int64Var(&permissionID, "permission", 0, "permission id")
	_ = grant.MarkFlagRequired("role")
	_ = grant.MarkFlagRequired("permission")

	var check models.PermissionCheck
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check whether a user holds a permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			result, err := rt.app.Client.Roles.ValidatePermission(cmd.Context(), check, token)
			if err != nil {
				return err
			}
			return rt.print(result)
		},
	}
	vf := validate.Flags()
	vf.Int64Var(&check.UserID, "user", 0, "user id")
	vf.StringVar(&check.Resource, "resource", "", "resource")
	vf.StringVar(&check.Action, "action", "", "action")
	_ = validate.MarkFlagRequired("user")
	_ = validate.MarkFlagRequired("resource")
	_ = validate.MarkFlagRequired("action")

	roles.AddCommand(create, permission, assign, grant, validate)
	return roles
}
