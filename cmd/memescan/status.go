package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running instance's /status endpoint",
		Long:  "Fetches and prints the scheduler and threshold snapshot from a running memescan instance's monitoring server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(addr, timeout)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://127.0.0.1:9090", "Base URL of the running instance's monitoring server")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}

func runStatus(addr string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(addr + "/status")
	if err != nil {
		return fmt.Errorf("status: request failed: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("status: decode response: %w", err)
	}

	pretty, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
