package main

import (
	"fmt"
	"text/tabwriter"

	"launchpad/internal/database"
	"launchpad/internal/repository"
	"launchpad/internal/seed"
	"launchpad/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// opener returns the database the commands operate on.
type opener func() (*gorm.DB, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "launchpadctl",
		Short:         "Maintenance commands for the launchpad product directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newSeedCmd(open),
		newSetAdminCmd(open, "promote", true),
		newSetAdminCmd(open, "demote", false),
		newListAdminsCmd(open),
	)
	return root
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCmd(open opener) *cobra.Command {
	opts := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users, products, comments and upvotes",
		Long: `Fill the database with demo data.

Examples:
  launchpadctl seed --users 50 --products 120
  launchpadctl seed --clean --admin-email me@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			sum, err := seed.Seed(cmd.Context(), db, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d products, %d comments, %d upvotes\n",
				sum.Users, sum.Products, sum.Comments, sum.Upvotes)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Users, "users", opts.Users, "number of users")
	f.IntVar(&opts.Products, "products", opts.Products, "number of products")
	f.IntVar(&opts.MaxCommentsPerProduct, "max-comments", opts.MaxCommentsPerProduct, "maximum comments per live product")
	f.IntVar(&opts.MaxUpvotesPerProduct, "max-upvotes", opts.MaxUpvotesPerProduct, "maximum upvotes per live product")
	f.StringVar(&opts.AdminEmail, "admin-email", "", "also create an admin with this e-mail")
	f.BoolVar(&opts.Clean, "clean", false, "delete existing data first")
	f.Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func newSetAdminCmd(open opener, use string, admin bool) *cobra.Command {
	short := "Grant admin rights to a user"
	if !admin {
		short = "Revoke admin rights from a user"
	}
	return &cobra.Command{
		Use:   use + " <user-id-or-email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := service.NewUserService(repository.NewStore(db))
			user, err := users.SetAdmin(cmd.Context(), args[0], admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) admin=%t\n", user.Email, user.ID, user.IsAdmin)
			return nil
		},
	}
}

func newListAdminsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "List users with admin rights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			admins, err := service.NewUserService(repository.NewStore(db)).ListAdmins(cmd.Context())
			if err != nil {
				return err
			}
			if len(admins) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no admins")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, u := range admins {
				fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
			}
			return w.Flush()
		},
	}
}
