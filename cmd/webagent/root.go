package main

import (
	"context"
	"time"

	"webagent/internal/di"
	"webagent/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

var (
	flagHeadless bool
	flagHeaded   bool
	flagTimeout  time.Duration
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "webagent",
	Short:         "LLM-driven browser automation",
	Long:          "webagent translates natural-language tasks into browser actions,\nasking an LLM what to do at each step.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagHeadless, "headless", true, "run browser in headless mode")
	rootCmd.PersistentFlags().BoolVar(&flagHeaded, "headed", false, "run browser in headed mode (overrides --headless)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "per-action timeout")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(navigateCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(interactiveCmd)
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func headless() bool {
	if flagHeaded {
		return false
	}
	return flagHeadless
}

// newContainer builds the DI container from env config and global flags.
// maxSteps overrides the env value when positive.
func newContainer(ctx context.Context, envService *env.EnvService, maxSteps int) (*di.Container, error) {
	if maxSteps <= 0 {
		maxSteps = envService.GetInt("WEBAGENT_MAX_STEPS", 10)
	}
	return di.NewContainer(ctx, di.Config{
		OpenRouterAPIKey: envService.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:  envService.GetWithDefault("OPENROUTER_MODEL_NAME", "openai/gpt-4o-mini"),
		BrowserHeadless:  headless(),
		MaxSteps:         maxSteps,
		MaxRetries:       envService.GetInt("WEBAGENT_MAX_RETRIES", 3),
		ActionTimeout:    flagTimeout,
		Verbose:          flagVerbose,
		CredentialsPath:  envService.GetWithDefault("WEBAGENT_CREDENTIALS_PATH", ".webagent/credentials.json"),
		CredentialsKey:   envService.Get("WEBAGENT_CREDENTIALS_KEY"),
	})
}
