package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/config"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import receipts into the local store",
		Long: `Fetch raw receipts from the receipt backend or a JSON file and save them
in the local store.

Receipts are upserted by id, so importing the same receipts twice is safe.
Each chunk is saved in its own transaction; an interrupted import keeps the
chunks that already finished.

With --replace, stored receipts missing from this import are removed once
every chunk has been saved. A failed or interrupted import removes nothing.`,
		RunE: runImport,
	}

	cmd.Flags().String("file", "", "import from a JSON file instead of the backend")
	cmd.Flags().Int("chunk-size", 200, "receipts saved per transaction")
	cmd.Flags().Bool("replace", false, "remove stored receipts missing from this import after it completes")
	cmd.Flags().Bool("dry-run", false, "fetch and count without saving")

	_ = viper.BindPFlag("import.chunk_size", cmd.Flags().Lookup("chunk-size"))

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		viper.Set("source.kind", string(config.SourceFile))
		viper.Set("source.file", file)
	}
	replace, _ := cmd.Flags().GetBool("replace")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	chunkSize := viper.GetInt("import.chunk_size")
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", common.ErrInvalidConfig, chunkSize)
	}

	srcCfg, err := config.LoadSourceConfig()
	if err != nil {
		return err
	}
	if srcCfg.Kind == config.SourceStore {
		return fmt.Errorf("%w: import needs --source http or --file", common.ErrInvalidConfig)
	}

	handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Import")
	ctx, stop := handler.HandleInterrupts(cmd.Context(), "Run 'raseed import' again to pick up the remaining receipts.")
	defer stop()

	src, closeSource, err := openSource(ctx, srcCfg)
	if err != nil {
		return err
	}
	defer closeSource()

	slog.Info("Fetching receipts", "source", srcCfg.Kind, "user", srcCfg.UserID)
	raw, err := src.FetchReceipts(ctx, srcCfg.UserID)
	if err != nil {
		common.LogError(err, "Failed to fetch receipts", common.Fields{"source": srcCfg.Kind, "user": srcCfg.UserID})
		return common.NewUserError(fmt.Sprintf("Could not fetch receipts from the %s source", srcCfg.Kind), err)
	}

	if dryRun {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Would import %d receipts for %s", len(raw), srcCfg.UserID)))
		return nil
	}

	store, err := initStorage(ctx, srcCfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	saved, batchIDs, err := saveInChunks(ctx, cmd.OutOrStdout(), store, srcCfg.UserID, string(srcCfg.Kind), raw, chunkSize)
	if err != nil {
		if handler.WasInterrupted() {
			slog.Warn("Import interrupted", "saved", saved, "total", len(raw))
			return nil
		}
		common.LogError(err, "Import failed", common.Fields{"user": srcCfg.UserID, "saved": saved, "total": len(raw)})
		return common.NewUserError(
			fmt.Sprintf("Import stopped after %d of %d receipts; nothing stored was removed", saved, len(raw)), err)
	}

	if replace {
		pruned, pruneErr := store.PruneReceipts(ctx, srcCfg.UserID, batchIDs)
		if pruneErr != nil {
			return pruneErr
		}
		common.LogInfo("Removed receipts missing from this import", common.Fields{"user": srcCfg.UserID, "count": pruned})
	}

	total, err := store.CountReceipts(ctx, srcCfg.UserID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Imported %d receipts (%d stored for %s)", saved, total, srcCfg.UserID)))
	return nil
}

// saveInChunks saves raw in transactions of chunkSize and reports progress.
// It returns how many receipts were committed and the ids of their batches.
func saveInChunks(ctx context.Context, out io.Writer, store service.ReceiptStore, userID, source string, raw []model.RawReceipt, chunkSize int) (int, []string, error) {
	bar := newProgressBar(out, len(raw), "Saving receipts...")

	saved := 0
	var batchIDs []string
	for start := 0; start < len(raw); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return saved, batchIDs, err
		}
		end := min(start+chunkSize, len(raw))

		batch, err := store.SaveRawReceipts(ctx, userID, source, raw[start:end])
		if err != nil {
			return saved, batchIDs, fmt.Errorf("failed to save receipts %d-%d: %w", start+1, end, err)
		}
		saved += batch.ReceiptCount
		batchIDs = append(batchIDs, batch.ID)
		common.LogDebug("Saved receipt chunk", common.Fields{"batch": batch.ID, "count": batch.ReceiptCount})

		if err := bar.Add(end - start); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	}
	return saved, batchIDs, nil
}

func newProgressBar(out io.Writer, total int, description string) *progressbar.ProgressBar {
	if out == nil {
		out = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(out)
		}),
	)
}
