package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/designd/internal/config"
	"github.com/fyrsmithlabs/designd/internal/memory"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory document status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	doc, err := store.Load(context.Background())
	if err != nil {
		return err
	}

	cmd.Printf("Memory document: %s (%s backend, schema %s)\n", cfg.Memory.Path, cfg.Memory.Backend, doc.Meta.Version)
	if doc.Meta.LastUpdated != nil {
		cmd.Printf("Last updated:    %s\n", doc.Meta.LastUpdated.Format("2006-01-02 15:04:05"))
	} else {
		cmd.Printf("Last updated:    never\n")
	}
	cmd.Printf("Sessions:        %d\n", doc.Meta.TotalSessions)
	cmd.Printf("Proposals:       %d\n", doc.Meta.TotalProposals)
	cmd.Printf("Acceptance rate: %.2f\n", doc.Meta.AcceptanceRate)
	cmd.Printf("Principles:      %d\n", len(doc.Principles))
	cmd.Printf("Approved:        %d\n", len(doc.ApprovedPatterns))
	cmd.Printf("Rejected:        %d\n", len(doc.RejectedPatterns))
	return nil
}
