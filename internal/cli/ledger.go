package cli

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
)

var (
	ledgerCmd = &cobra.Command{
		Use:   "ledger",
		Short: "Ledger maintenance commands",
	}

	ledger_exportCmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Write a snapshot of the ledger",
		Args:  cobra.ExactArgs(1),
		RunE:  runLedgerExport,
	}

	ledger_importCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Load a snapshot into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE:  runLedgerImport,
	}
)

func runLedgerExport(cmd *cobra.Command, args []string) error {
	lc := cfg.Ledger()

	return withServices(cmd, func(ctx context.Context, s *services) error {
		snap, err := ledger.Export(ctx, s.backend, lc.ChainID, lc.Keyspace)
		if err != nil {
			return err
		}

		b, err := snap.Marshal()
		if err != nil {
			return err
		}

		if err := os.WriteFile(args[0], b, 0600); err != nil {
			return errors.Wrap(err, "writing snapshot")
		}

		logging.WithFields(logging.Fields{"entries": len(snap.Entries), "file": args[0]}).Info("exported ledger")

		return nil
	})
}

func runLedgerImport(cmd *cobra.Command, args []string) error {
	b, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "reading snapshot")
	}

	snap := &ledger.Snapshot{}
	if err := snap.Unmarshal(b); err != nil {
		return err
	}

	lc := cfg.Ledger()
	if snap.ChainID != lc.ChainID {
		logging.WithFields(logging.Fields{"snapshot": snap.ChainID, "ledger": lc.ChainID}).Warn("importing snapshot from another chain")
	}

	return withServices(cmd, func(ctx context.Context, s *services) error {
		if err := ledger.Import(ctx, s.backend, snap, lc.Keyspace); err != nil {
			return err
		}

		logging.WithFields(logging.Fields{"entries": len(snap.Entries), "file": args[0]}).Info("imported ledger")

		return nil
	})
}
