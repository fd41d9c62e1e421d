package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

func newServiceCmd(rt *runtime) *cobra.Command {
	svc := &cobra.Command{
		Use:   "service",
		Short: "Submit and manage service offers",
	}
	svc.AddCommand(
		newServiceAddCmd(rt),
		newServiceListCmd(rt),
		newServiceMineCmd(rt),
		newServiceShowCmd(rt),
		newServiceUpdateCmd(rt),
		newServiceDeleteCmd(rt),
		newServiceDecisionCmd(rt, "accept", "Accept a pending offer on your need", rt.acceptOffer),
		newServiceDecisionCmd(rt, "reject", "Reject a pending offer on your need", rt.rejectOffer),
	)
	return svc
}

func (rt *runtime) acceptOffer(ctx context.Context, id string) (*domain.ServiceOffer, error) {
	return rt.svc.Market.AcceptServiceOffer(ctx, rt.session(), id)
}

func (rt *runtime) rejectOffer(ctx context.Context, id string) (*domain.ServiceOffer, error) {
	return rt.svc.Market.RejectServiceOffer(ctx, rt.session(), id)
}

func newServiceAddCmd(rt *runtime) *cobra.Command {
	var in domain.NewServiceOffer
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Offer a service against an open need",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		o, err := rt.svc.Market.AddServiceOffer(cmd.Context(), rt.session(), in)
		if err != nil {
			return err
		}
		return printJSON(cmd, o)
	})
	f := cmd.Flags()
	f.StringVar(&in.NeedID, "need", "", "need ID")
	f.StringVar(&in.ServiceType, "service-type", "", "service category")
	f.StringVar(&in.Title, "title", "", "short title")
	f.StringVar(&in.Content, "content", "", "offer details")
	_ = cmd.MarkFlagRequired("need")
	return cmd
}

func newServiceListCmd(rt *runtime) *cobra.Command {
	var lf listFlags
	var needID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List service offers, newest first",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		page, err := rt.svc.Market.ListServiceOffers(cmd.Context(), ports.OfferFilter{
			NeedID:      needID,
			Keyword:     lf.keyword,
			ServiceType: lf.serviceType,
			Status:      domain.OfferStatus(lf.status),
			Page:        lf.page,
			Size:        lf.size,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	})
	lf.register(cmd.Flags())
	cmd.Flags().StringVar(&needID, "need", "", "only offers for this need")
	return cmd
}

func newServiceMineCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List the logged-in user's offers",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		return printJSON(cmd, rt.svc.Market.MyServiceOffers(cmd.Context(), rt.session()))
	})
	return cmd
}

func newServiceShowCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <serviceId>",
		Short: "Show one service offer",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		o, err := rt.svc.Market.GetServiceOffer(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, o)
	})
	return cmd
}

func newServiceUpdateCmd(rt *runtime) *cobra.Command {
	var serviceType, title, content string
	cmd := &cobra.Command{
		Use:   "update <serviceId>",
		Short: "Edit a pending offer",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		o, err := rt.svc.Market.UpdateServiceOffer(cmd.Context(), rt.session(), args[0], domain.ServiceOfferPatch{
			ServiceType: stringFlag(cmd, "service-type", &serviceType),
			Title:       stringFlag(cmd, "title", &title),
			Content:     stringFlag(cmd, "content", &content),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, o)
	})
	f := cmd.Flags()
	f.StringVar(&serviceType, "service-type", "", "service category")
	f.StringVar(&title, "title", "", "short title")
	f.StringVar(&content, "content", "", "offer details")
	return cmd
}

func newServiceDeleteCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <serviceId>",
		Short: "Withdraw a pending offer",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		if err := rt.svc.Market.DeleteServiceOffer(cmd.Context(), rt.session(), args[0]); err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{"deleted": args[0]})
	})
	return cmd
}

func newServiceDecisionCmd(rt *runtime, verb, short string, decide func(context.Context, string) (*domain.ServiceOffer, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   verb + " <serviceId>",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		o, err := decide(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, o)
	})
	return cmd
}
