// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/placehub/placehub/internal/config"
)

// ServerStatus holds the probed state of a running server.
type ServerStatus struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// statusConfig holds flags for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running PlaceHub server",
		Long:  `Probe the readiness endpoint of a running server and report the result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, statusCfg *statusConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	status := probeReadiness("http://" + cfg.Observability.Addr + "/healthz/readiness")

	if statusCfg.jsonOutput {
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	if status.Ready {
		cmd.Println("ready")
	} else if status.Error != "" {
		cmd.Printf("not ready: %s\n", status.Error)
	} else {
		cmd.Println("not ready")
	}
	return nil
}

func probeReadiness(url string) ServerStatus {
	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return ServerStatus{Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	return ServerStatus{Ready: resp.StatusCode == http.StatusOK}
}
