package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/designd/internal/config"
	"github.com/fyrsmithlabs/designd/internal/memory"
)

func init() {
	rootCmd.AddCommand(contextCmd)
}

// contextCmd prints the generation context bundle, the sole mechanism by
// which recorded judgments constrain future proposals. Useful for checking
// what the generator will actually see.
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the design context bundle",
	RunE:  runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	backend, closeBackend, err := openBackend(cfg.Memory)
	if err != nil {
		return err
	}
	defer closeBackend()

	store, err := memory.NewStore(backend, zap.NewNop())
	if err != nil {
		return err
	}

	bundle, err := store.BuildDesignContext(context.Background())
	if err != nil {
		return err
	}

	cmd.Println(bundle)
	return nil
}
