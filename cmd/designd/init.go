package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/designd/internal/config"
	"github.com/fyrsmithlabs/designd/internal/memory"
)

var (
	initDescription string
	initForce       bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDescription, "description", "Design memory for automated UI improvement", "Free-text description stored in the document")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Reinitialize even if a document already exists")
}

// initCmd creates the memory document. The daemon refuses to start without
// one: an absent document is a deliberate signal, never an implicit empty
// memory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the design memory document",
	Long: `Initialize the durable memory document designd records judgments into.

designd never creates this document implicitly: an empty memory would be
indistinguishable from "no constraints". Run this once per deployment.

Examples:
  # Initialize with the configured backend and path
  designd init

  # Start over, discarding all recorded judgments
  designd init --force`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
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

	doc, err := store.Init(context.Background(), initDescription, initForce)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	cmd.Printf("Initialized memory document (schema %s) at %s using %s backend.\n",
		doc.Meta.Version, cfg.Memory.Path, cfg.Memory.Backend)
	return nil
}
