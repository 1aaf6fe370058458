package main

import (
	"fmt"

	"webagent/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

var (
	navigateURL     string
	navigateWaitFor string
)

var navigateCmd = &cobra.Command{
	Use:   "navigate",
	Short: "Navigate to a URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		envService := env.NewEnvService()

		container, err := newContainer(ctx, envService, 0)
		if err != nil {
			return err
		}
		defer container.Close()

		if err := container.Browser.Navigate(ctx, navigateURL); err != nil {
			return err
		}

		if navigateWaitFor != "" {
			if err := container.Browser.WaitFor(ctx, navigateWaitFor); err != nil {
				return err
			}
		}

		fmt.Printf("Navigated to: %s\n", container.Browser.CurrentURL())
		return nil
	},
}

func init() {
	navigateCmd.Flags().StringVar(&navigateURL, "url", "", "URL to navigate to")
	navigateCmd.Flags().StringVar(&navigateWaitFor, "wait-for", "", "CSS selector to wait for after navigation")
	navigateCmd.MarkFlagRequired("url")
}
