package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// listFlags are the paging and filter flags shared by list commands.
type listFlags struct {
	keyword     string
	serviceType string
	status      string
	page        int
	size        int
}

func (l *listFlags) register(f *pflag.FlagSet) {
	f.StringVar(&l.keyword, "keyword", "", "title substring")
	f.StringVar(&l.serviceType, "service-type", "", "service category")
	f.StringVar(&l.status, "status", "", "status filter")
	f.IntVar(&l.page, "page", 1, "page number (1-based)")
	f.IntVar(&l.size, "size", 10, "page size")
}

// stringFlag returns a pointer to v when the flag was set on the command line.
func stringFlag(cmd *cobra.Command, name string, v *string) *string {
	if cmd.Flags().Changed(name) {
		return v
	}
	return nil
}

func newNeedCmd(rt *runtime) *cobra.Command {
	need := &cobra.Command{
		Use:   "need",
		Short: "Post and manage service needs",
	}
	need.AddCommand(
		newNeedAddCmd(rt),
		newNeedListCmd(rt, false),
		newNeedListCmd(rt, true),
		newNeedShowCmd(rt),
		newNeedUpdateCmd(rt),
		newNeedDeleteCmd(rt),
		newNeedCancelCmd(rt),
	)
	return need
}

func newNeedAddCmd(rt *runtime) *cobra.Command {
	var in domain.NewNeed
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Post a new need",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		n, err := rt.svc.Market.AddNeed(cmd.Context(), rt.session(), in)
		if err != nil {
			return err
		}
		return printJSON(cmd, n)
	})
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "short title")
	f.StringVar(&in.Region, "region", "", "region")
	f.StringVar(&in.ServiceType, "service-type", "", "service category")
	f.StringVar(&in.Description, "description", "", "details")
	f.StringSliceVar(&in.ImgURLs, "img", nil, "image URL (repeatable)")
	f.StringVar(&in.VideoURL, "video", "", "video URL")
	return cmd
}

func newNeedListCmd(rt *runtime, mine bool) *cobra.Command {
	var lf listFlags
	var region string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List needs, newest first",
		Args:  cobra.NoArgs,
	}
	if mine {
		cmd.Use, cmd.Short = "mine", "List the logged-in user's needs"
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		filter := ports.NeedFilter{
			Keyword:     lf.keyword,
			ServiceType: lf.serviceType,
			Region:      region,
			Status:      domain.NeedStatus(lf.status),
			Page:        lf.page,
			Size:        lf.size,
		}
		var (
			page *ports.NeedPage
			err  error
		)
		if mine {
			page, err = rt.svc.Market.MyNeeds(cmd.Context(), rt.session(), filter)
		} else {
			page, err = rt.svc.Market.ListNeeds(cmd.Context(), filter)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	})
	lf.register(cmd.Flags())
	cmd.Flags().StringVar(&region, "region", "", "region substring")
	return cmd
}

func newNeedShowCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <needId>",
		Short: "Show one need and its offers",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		n, err := rt.svc.Market.GetNeed(ctx, args[0])
		if err != nil {
			return err
		}
		offers, err := rt.svc.Market.OffersForNeed(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, struct {
			*domain.Need
			Services []*domain.ServiceOffer `json:"services"`
		}{n, offers})
	})
	return cmd
}

func newNeedUpdateCmd(rt *runtime) *cobra.Command {
	var title, region, serviceType, description, video string
	var imgs []string
	cmd := &cobra.Command{
		Use:   "update <needId>",
		Short: "Edit a need that has no offers yet",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		patch := domain.NeedPatch{
			Title:       stringFlag(cmd, "title", &title),
			Region:      stringFlag(cmd, "region", &region),
			ServiceType: stringFlag(cmd, "service-type", &serviceType),
			Description: stringFlag(cmd, "description", &description),
			VideoURL:    stringFlag(cmd, "video", &video),
		}
		if cmd.Flags().Changed("img") {
			patch.ImgURLs = &imgs
		}
		n, err := rt.svc.Market.UpdateNeed(cmd.Context(), rt.session(), args[0], patch)
		if err != nil {
			return err
		}
		return printJSON(cmd, n)
	})
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "short title")
	f.StringVar(&region, "region", "", "region")
	f.StringVar(&serviceType, "service-type", "", "service category")
	f.StringVar(&description, "description", "", "details")
	f.StringSliceVar(&imgs, "img", nil, "image URL (repeatable, replaces the list)")
	f.StringVar(&video, "video", "", "video URL")
	return cmd
}

func newNeedDeleteCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <needId>",
		Short: "Delete a need that has no offers yet",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		if err := rt.svc.Market.DeleteNeed(cmd.Context(), rt.session(), args[0]); err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{"deleted": args[0]})
	})
	return cmd
}

func newNeedCancelCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <needId>",
		Short: "Close an open need",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		n, err := rt.svc.Market.CancelNeed(cmd.Context(), rt.session(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, n)
	})
	return cmd
}
