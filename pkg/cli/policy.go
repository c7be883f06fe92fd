package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/WilderMartins/GRC-sub003/pkg/cli/config"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

func cmdPolicy() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:    "policy",
		Aliases: []string{"p"},
		Usage:   "Validate policy files and print the effective risk matrix",
		Flags:   policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			matrix, err := policyCfg.RiskMatrix()
			if err != nil {
				return goerr.Wrap(err, "risk matrix validation failed")
			}

			members, err := policyCfg.Members()
			if err != nil {
				return goerr.Wrap(err, "member file validation failed")
			}
			if policyCfg.HasMemberFile() {
				perOrg := make(map[types.OrganizationID]int)
				for _, m := range members {
					perOrg[m.OrganizationID]++
				}
				logger.Info("Member file validated", "members", len(members), "organizations", len(perOrg))
			}

			var w io.Writer = os.Stdout
			if root := c.Root(); root != nil && root.Writer != nil {
				w = root.Writer
			}
			return writeRiskMatrix(w, matrix)
		},
	}
}

// writeRiskMatrix prints one row per impact and one column per probability
func writeRiskMatrix(w io.Writer, m *model.RiskMatrix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprint(tw, "impact\\probability")
	for _, p := range types.AllSeverities() {
		fmt.Fprintf(tw, "\t%s", p)
	}
	fmt.Fprintln(tw)

	for _, impact := range types.AllSeverities() {
		fmt.Fprint(tw, impact)
		for _, p := range types.AllSeverities() {
			fmt.Fprintf(tw, "\t%s", m.Classify(impact, p))
		}
		fmt.Fprintln(tw)
	}

	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write risk matrix")
	}
	return nil
}
