package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/env"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var interactiveSite string

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start interactive mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		envService := env.NewEnvService()

		// Interactive sessions always run headed so the user can watch.
		flagHeaded = true

		container, err := newContainer(ctx, envService, 0)
		if err != nil {
			return err
		}
		defer container.Close()

		if interactiveSite != "" {
			if err := container.Browser.Navigate(ctx, interactiveSite); err != nil {
				return err
			}
		}

		fmt.Println("Interactive mode. Type 'help' for commands, 'exit' to quit.")
		scanner := bufio.NewScanner(os.Stdin)

		for {
			fmt.Print("\n> ")
			if !scanner.Scan() {
				break
			}
			if ctx.Err() != nil {
				break
			}

			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				continue
			case line == "exit" || line == "quit":
				return nil
			case line == "help":
				fmt.Println("Commands: navigate <url>, task <description>, exit")
			case strings.HasPrefix(line, "navigate "):
				url := strings.TrimSpace(strings.TrimPrefix(line, "navigate "))
				if err := container.Browser.Navigate(ctx, url); err != nil {
					fmt.Printf("Navigation failed: %v\n", err)
					continue
				}
				fmt.Printf("Navigated to: %s\n", container.Browser.CurrentURL())
			case strings.HasPrefix(line, "task "):
				goal := strings.TrimSpace(strings.TrimPrefix(line, "task "))
				task := entity.Task{ID: uuid.NewString(), Goal: goal}
				result, err := container.TaskRunner.Run(ctx, task)
				if err != nil {
					return err
				}
				printResult(result)
			default:
				fmt.Println("Unknown command. Type 'help' for available commands.")
			}
		}

		return scanner.Err()
	},
}

func init() {
	interactiveCmd.Flags().StringVar(&interactiveSite, "site", "", "initial website to navigate to")
}
