package main

import (
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"sitecrawl/internal/config"
)

const exampleTarget = "https://example.com/page"

func NewRelaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relays",
		Short: "Show the relay chain in priority order",
		Long: `Relays prints the relay chain used for fetching, as configured in the
config file or built in, with the URL each relay would request for an
example page.`,
		Args: cobra.NoArgs,
		RunE: runRelaysCmd,
	}
}

func runRelaysCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := applyConfigFile(cmd, cfg); err != nil {
		return err
	}
	relays, err := cfg.RelayChain()
	if err != nil {
		return err
	}

	tbl := table.New("#", "RELAY", "REQUEST").WithWriter(cmd.OutOrStdout())
	if len(relays) == 0 {
		tbl.AddRow(1, "direct", exampleTarget)
	}
	for i, r := range relays {
		tbl.AddRow(i+1, r.Name, r.Wrap(exampleTarget))
	}
	tbl.Print()
	return nil
}
