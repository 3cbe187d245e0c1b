package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/backup"
	"github.com/hyperengineering/loopz/internal/store"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		outPath   string
		upload    bool
		noEncrypt bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as a snapshot",
		Long: `Export every log, the goals, the streaks and the metric definitions as one
snapshot document. The snapshot is encrypted when a backup passphrase is
configured (LOOPZ_BACKUP_PASSPHRASE). With --upload it is also stored in the
configured S3 bucket and a presigned download URL is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, done, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer done()

			snap, err := backup.Export(ctx, a.Store(), time.Now())
			if err != nil {
				return err
			}
			passphrase := c.cfg.Backup.Passphrase
			if noEncrypt {
				passphrase = ""
			}
			data, err := backup.Seal(snap, passphrase)
			if err != nil {
				return err
			}
			name := backup.ObjectName(snap.ExportedAt, passphrase != "")

			out := cmd.OutOrStdout()
			if outPath == "-" {
				if _, err := out.Write(data); err != nil {
					return err
				}
			} else {
				if outPath == "" {
					outPath = name
				}
				if err := os.WriteFile(outPath, data, 0600); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				fmt.Fprintf(out, "Wrote %s to %s.\n", humanize.Bytes(uint64(len(data))), outPath)
				if ts, ok := lastChanged(ctx, a.Store()); ok {
					fmt.Fprintf(out, "Logbook last changed %s.\n", humanize.Time(ts))
				}
			}

			if !upload {
				return nil
			}
			up, err := backup.NewUploader(c.cfg.Backup.Storage)
			if err != nil {
				return err
			}
			key, err := up.Upload(ctx, name, data)
			if errors.Is(err, backup.ErrNotConfigured) {
				return fmt.Errorf("--upload: %w (set LOOPZ_BACKUP_BUCKET and LOOPZ_S3_ENDPOINT)", err)
			}
			if err != nil {
				return err
			}
			url, expires, err := up.PresignedURL(ctx, key)
			if err != nil {
				return err
			}
			slog.Info("snapshot uploaded", "component", "backup", "key", key)
			fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded %s. Download link (expires %s):\n%s\n",
				key, humanize.Time(expires), url)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&outPath, "out", "o", "", "Output file, - for stdout (default: a timestamped file name)")
	fl.BoolVar(&upload, "upload", false, "Also upload the snapshot to the configured bucket")
	fl.BoolVar(&noEncrypt, "no-encrypt", false, "Write plain JSON even when a passphrase is configured")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace all data with a snapshot",
		Long:  "Replace all data with the contents of a snapshot written by export. Encrypted snapshots need LOOPZ_BACKUP_PASSPHRASE.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			snap, err := backup.Open(data, c.cfg.Backup.Passphrase)
			if err != nil {
				return err
			}

			a, done, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := backup.Restore(ctx, a.Store(), snap); err != nil {
				return err
			}
			if err := a.Reload(ctx); err != nil {
				return fmt.Errorf("reload after restore: %w", err)
			}
			h := a.Health(Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot from %s: %d days logged, %d metrics.\n",
				humanize.Time(snap.ExportedAt), h.DaysLogged, h.MetricCount)
			return nil
		},
	}
}

// lastChanged reports when the logs key was last written, for stores that
// track write times.
func lastChanged(ctx context.Context, s store.Store) (time.Time, bool) {
	ts, ok := s.(interface {
		UpdatedAt(context.Context, string) (time.Time, error)
	})
	if !ok {
		return time.Time{}, false
	}
	t, err := ts.UpdatedAt(ctx, store.KeyLogs)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
