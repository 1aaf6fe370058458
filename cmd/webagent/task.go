package main

import (
	"fmt"

	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/env"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	taskPrompt   string
	taskURL      string
	taskMaxSteps int
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Execute a task using LLM guidance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		envService := env.NewEnvService()

		container, err := newContainer(ctx, envService, taskMaxSteps)
		if err != nil {
			return err
		}
		defer container.Close()

		if taskURL != "" {
			if err := container.Browser.Navigate(ctx, taskURL); err != nil {
				return fmt.Errorf("initial navigation failed: %w", err)
			}
		}

		task := entity.Task{
			ID:       uuid.NewString(),
			Goal:     taskPrompt,
			StartURL: taskURL,
			Headless: headless(),
		}

		result, err := container.TaskRunner.Run(ctx, task)
		if err != nil {
			return err
		}

		printResult(result)
		if !result.Succeeded() {
			return fmt.Errorf("task failed: %s", result.Reason)
		}
		return nil
	},
}

func init() {
	taskCmd.Flags().StringVar(&taskPrompt, "prompt", "", "task description for the LLM")
	taskCmd.Flags().StringVar(&taskURL, "url", "", "URL to start the task from")
	taskCmd.Flags().IntVar(&taskMaxSteps, "max-steps", 0, "maximum number of automation steps (overrides env)")
	taskCmd.MarkFlagRequired("prompt")
}

func printResult(result *entity.RunResult) {
	if result.Succeeded() {
		fmt.Printf("Task completed in %d steps.\n", result.Steps)
		if result.FinalValue != "" {
			fmt.Println(result.FinalValue)
		}
		return
	}
	fmt.Printf("Task failed after %d steps: %s\n", result.Steps, result.Reason)
	for i, entry := range result.Trace {
		outcome := "ok"
		if !entry.Result.Success {
			outcome = "failed: " + entry.Result.ErrorDetail
		}
		fmt.Printf("  %d. %s -> %s\n", i+1, entry.Step.Describe(), outcome)
	}
}
