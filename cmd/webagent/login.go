package main

import (
	"fmt"

	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/env"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	loginSite     string
	loginUsername string
	loginPassword string
	loginSave     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to a website using stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		envService := env.NewEnvService()

		container, err := newContainer(ctx, envService, 0)
		if err != nil {
			return err
		}
		defer container.Close()

		// The orchestrator only ever sees the opaque handle; raw
		// credentials stay inside the encrypted store.
		handle := ""
		if loginUsername != "" && loginPassword != "" {
			handle, err = container.Credentials.Save(loginSite, loginUsername, loginPassword)
			if err != nil {
				return fmt.Errorf("store credentials: %w", err)
			}
			if loginSave {
				fmt.Printf("Credentials saved for %s\n", loginSite)
			}
		} else {
			handle, err = container.Credentials.Handle(loginSite)
			if err != nil {
				return err
			}
		}

		if err := container.Browser.Navigate(ctx, "https://"+loginSite); err != nil {
			return fmt.Errorf("navigation failed: %w", err)
		}

		task := entity.Task{
			ID:       uuid.NewString(),
			Goal:     fmt.Sprintf("Log in to %s. Use the login action with credential handle %q to fill the form, then submit it.", loginSite, handle),
			Headless: headless(),
		}

		result, err := container.TaskRunner.Run(ctx, task)
		if err != nil {
			return err
		}

		printResult(result)
		if !result.Succeeded() {
			return fmt.Errorf("login failed: %s", result.Reason)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginSite, "site", "", "website domain (e.g. github.com)")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "username for login")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password for login")
	loginCmd.Flags().BoolVar(&loginSave, "save", false, "confirm storing the credentials")
	loginCmd.MarkFlagRequired("site")
}
