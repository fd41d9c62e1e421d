package cli

import (
	"github.com/spf13/cobra"

	"github.com/haofuwu/service-market/internal/core/ports"
)

func newNavCmd(rt *runtime) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "nav <path>",
		Short: "Ask the route guard whether the session may open a client route",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, rt.svc.Guard.Decide(args[0], from, rt.session()))
	})
	cmd.Flags().StringVar(&from, "from", "", "current client path")
	return cmd
}

func newStatsCmd(rt *runtime) *cobra.Command {
	var start, end, region string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Monthly need and accepted-offer counts (admin only)",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.wrap(func(cmd *cobra.Command, _ []string) error {
		res, err := rt.svc.Stats.Monthly(cmd.Context(), rt.session(), ports.StatsQuery{
			StartMonth:    start,
			EndMonth:      end,
			RegionKeyword: region,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	})
	f := cmd.Flags()
	f.StringVar(&start, "start", "", "first month (YYYY-MM)")
	f.StringVar(&end, "end", "", "last month (YYYY-MM)")
	f.StringVar(&region, "region", "", "region substring")
	return cmd
}
