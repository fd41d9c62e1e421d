package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
	"github.com/haofuwu/service-market/internal/core/validate"
)

func newRegisterCmd(rt *runtime) *cobra.Command {
	var in ports.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a regular account (does not log in)",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		if !validate.Password(in.Password) {
			return fmt.Errorf("%w: password must be at least 6 characters with 2 digits and mixed case", domain.ErrValidation)
		}
		if !validate.Phone(in.Phone) {
			return fmt.Errorf("%w: phone must be an 11-digit number starting with 1", domain.ErrValidation)
		}

		ctx := cmd.Context()
		unique, err := rt.svc.Checker.IsUnique(ctx, in.Username)
		if err != nil {
			return err
		}
		if !unique {
			return domain.ErrUsernameTaken
		}

		user, err := rt.svc.Session.Register(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(cmd, user)
	})

	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "login name")
	f.StringVar(&in.Password, "password", "", "password")
	f.StringVar(&in.RealName, "real-name", "", "display name (defaults to username)")
	f.StringVar(&in.Phone, "phone", "", "11-digit mobile number")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newLoginCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and persist the session",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		sess, err := rt.svc.Session.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, sess)
	})
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		if err := rt.svc.Session.Logout(cmd.Context()); err != nil {
			return err
		}
		return printJSON(cmd, rt.session())
	})
	return cmd
}

func newWhoamiCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the restored session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		return printJSON(cmd, rt.session())
	})
	return cmd
}

func newProfileCmd(rt *runtime) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage the logged-in user's profile",
	}

	var realName, phone, intro string
	set := &cobra.Command{
		Use:   "set",
		Short: "Change realName, phone or intro",
		Args:  cobra.NoArgs,
	}
	set.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		var patch domain.UserPatch
		if cmd.Flags().Changed("real-name") {
			patch.RealName = &realName
		}
		if cmd.Flags().Changed("phone") {
			patch.Phone = &phone
		}
		if cmd.Flags().Changed("intro") {
			patch.Intro = &intro
		}
		user, err := rt.svc.Session.UpdateProfile(cmd.Context(), patch)
		if err != nil {
			return err
		}
		return printJSON(cmd, user)
	})
	f := set.Flags()
	f.StringVar(&realName, "real-name", "", "display name")
	f.StringVar(&phone, "phone", "", "11-digit mobile number")
	f.StringVar(&intro, "intro", "", "short introduction")

	profile.AddCommand(set)
	return profile
}

type checkUsernameOutput struct {
	Username string `json:"username"`
	IsUnique bool   `json:"isUnique"`
	Mode     string `json:"mode"`
}

func newCheckUsernameCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-username <username>",
		Short: "Check whether a username is still free",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		unique, err := rt.svc.Checker.IsUnique(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, checkUsernameOutput{Username: args[0], IsUnique: unique, Mode: rt.svc.Checker.Mode()})
	})
	return cmd
}
