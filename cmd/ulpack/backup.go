package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/ulpack/internal/backup"
	"github.com/dukerupert/ulpack/internal/database"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of the database",
	Long: `Writes a consistent snapshot of the database into the backup
directory. The snapshot is encrypted when ULPACK_BACKUP_PASSPHRASE is set
and uploaded when the ULPACK_BACKUP_S3_* settings are complete.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.BackupS3.Bucket != "" && !cfg.BackupS3.Enabled() {
			logger.Warn("backup bucket set without credentials, upload skipped", "bucket", cfg.BackupS3.Bucket)
		}

		m := backup.NewManager(db, backup.Config{
			Dir:        cfg.BackupDir,
			Passphrase: cfg.BackupPassphrase,
			S3:         cfg.BackupS3,
		}, logger.With("component", "backup"))

		res, err := m.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Path)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore SNAPSHOT TARGET",
	Short: "Restore a snapshot into a new database file",
	Long: `Decrypts (if needed) and verifies SNAPSHOT, writing it to TARGET.
TARGET must not exist. Stop the server before moving it over db_path.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := backup.Restore(cmd.Context(), args[0], args[1], cfg.BackupPassphrase); err != nil {
			return err
		}
		logger.Info("snapshot restored", "snapshot", args[0], "target", args[1])
		return nil
	},
}
