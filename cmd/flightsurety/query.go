package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flightsurety/types/ids"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query node status",
	Example: `  flightsurety status
  flightsurety status --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(s, func() {
			fmt.Printf("Chain: %s\nStatus: %s\nHeight: %d\nVersion: %s\n", s.ChainID, s.Status, s.Height, s.Version)
			fmt.Printf("Airlines: %d\nFlights: %d\nOracles: %d\n", s.Metrics.Airlines, s.Metrics.Flights, s.Metrics.Oracles)
			if s.Metrics.Relay != nil {
				fmt.Printf("Relay: %d requests, %d accepted, %d rejected\n",
					s.Metrics.Relay.Requests, s.Metrics.Relay.Accepted, s.Metrics.Relay.Rejected)
			}
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query node health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newClient().Health(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(h, func() {
			fmt.Printf("Node Health: %s\n", h.Status)
			fmt.Printf("Uptime: %ds\n", h.Metrics.UptimeSeconds)
			fmt.Printf("Height: %d\n", h.Metrics.Height)
			fmt.Printf("CPU Load: %.2f%%\n", h.Metrics.CPULoadPercent)
			fmt.Printf("Memory Usage: %.2f MB\n", h.Metrics.MemoryMB)
			fmt.Printf("Disk Free: %.2f MB\n", h.Metrics.DiskFreeMB)
		})
	},
}

var airlinesCmd = &cobra.Command{
	Use:   "airlines",
	Short: "List airlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().Airlines(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(list, func() {
			for _, a := range list {
				fmt.Printf("%s  registered=%v funded=%v votes=%d  %s\n", a.Address, a.Registered, a.Funded, len(a.Votes), a.Name)
			}
		})
	},
}

var flightsCmd = &cobra.Command{
	Use:   "flights",
	Short: "List registered flights",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().Flights(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(list, func() {
			for _, f := range list {
				fmt.Printf("%s  %-14s finalized=%v\n", f.Key, f.StatusCode, f.Finalized)
			}
		})
	},
}

var creditCmd = &cobra.Command{
	Use:   "credit <passenger>",
	Short: "Show a passenger's withdrawable credit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		passenger, err := ids.ParseAddress(args[0])
		if err != nil {
			return err
		}
		credit, err := newClient().Credit(cmd.Context(), passenger)
		if err != nil {
			return err
		}
		return printResult(map[string]interface{}{"passenger": passenger, "credit": credit}, func() {
			fmt.Printf("%s: %s\n", passenger, credit)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw the token holder's credit",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().Withdraw(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(p, func() {
			fmt.Printf("Paid %s to %s (%s)\n", p.Amount, p.Passenger, p.ID)
		})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List committed ledger events",
	RunE: func(cmd *cobra.Command, args []string) error {
		after, _ := cmd.Flags().GetUint64("after")
		limit, _ := cmd.Flags().GetInt("limit")
		evts, err := newClient().Events(cmd.Context(), after, limit)
		if err != nil {
			return err
		}
		return printResult(evts, func() {
			for _, e := range evts {
				fmt.Printf("#%d h=%d %-22s %v\n", e.Seq, e.Height, e.Type, e.Attributes)
			}
		})
	},
}

func init() {
	eventsCmd.Flags().Uint64("after", 0, "Only events with a greater sequence number")
	eventsCmd.Flags().Int("limit", 100, "Maximum number of events")
	rootCmd.AddCommand(statusCmd, healthCmd, airlinesCmd, flightsCmd, creditCmd, withdrawCmd, eventsCmd)
}
