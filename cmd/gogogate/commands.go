package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcurrier/gogogate2/internal/gogogate"
)

const commandTimeout = 30 * time.Second

func newDeviceClient() (*gogogate.Client, error) {
	if flagHost == "" {
		return nil, fmt.Errorf("--host is required (or set GOGOGATE_HOST)")
	}
	return gogogate.NewClient(gogogate.Config{
		Host:     flagHost,
		Username: flagUsername,
		Password: flagPassword,
	})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of all doors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newDeviceClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		states, err := client.Status(ctx)
		if err != nil {
			return err
		}
		for i, state := range states {
			fmt.Printf("door %d: %s\n", i+1, state)
		}
		return nil
	},
}

var tempCmd = &cobra.Command{
	Use:   "temp",
	Short: "Show the temperature sensor of each door",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newDeviceClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		temps, err := client.Temperatures(ctx)
		if err != nil {
			return err
		}
		for i, fahrenheit := range temps {
			if fahrenheit == 0 {
				fmt.Printf("door %d: no sensor\n", i+1)
				continue
			}
			fmt.Printf("door %d: %.1f F\n", i+1, fahrenheit)
		}
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <door>",
	Short: "Toggle a door (1-3) open or closed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		door, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("door must be a number: %q", args[0])
		}

		client, err := newDeviceClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := client.ToggleDoor(ctx, door); err != nil {
			return err
		}
		fmt.Printf("door %d toggled\n", door)
		return nil
	},
}
