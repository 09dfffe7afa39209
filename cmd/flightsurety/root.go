package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flightsurety/api/client"
)

var (
	configFile string
	nodeURL    string
	token      string
	output     string
)

var rootCmd = &cobra.Command{
	Use:           "flightsurety",
	Short:         "Flight delay insurance ledger",
	Long:          "Runs a flightsurety ledger node and queries a running one.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "JSON config file")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "url", client.DefaultURL, "Node API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("FLIGHTSURETY_TOKEN"), "Bearer token for signed requests")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "plain", "Output format: plain|json")
}

func newClient() *client.Client {
	return client.New(nodeURL, token)
}

// printResult writes v as indented JSON with -o json, otherwise runs plain.
func printResult(v interface{}, plain func()) error {
	if output != "json" {
		plain()
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
