package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/storage"
)

func (a *app) backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Create, list and restore snapshots of the ledger database.

Snapshots live in a backups directory next to the database file.`,
		Example: `  # Snapshot before a large import
  ledger backup create --tag antes-importacao

  # List all backups
  ledger backup list

  # Restore a backup
  ledger backup restore antes-importacao`,
	}

	cmd.AddCommand(a.createBackupCmd(), a.listBackupsCmd(), a.restoreBackupCmd())
	return cmd
}

// withBackups opens the store and hands its backup manager to fn.
func (a *app) withBackups(cmd *cobra.Command, fn func(*storage.BackupManager) error) error {
	store, err := a.initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewBackupManager()
	if err != nil {
		return fmt.Errorf("failed to create backup manager: %w", err)
	}
	return fn(manager)
}

func (a *app) createBackupCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the current database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withBackups(cmd, func(manager *storage.BackupManager) error {
				meta, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Backup %s criado (%d transações, %s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(meta.ID),
					meta.Transactions,
					formatFileSize(meta.FileSize))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "backup name (default: timestamp)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the backup")
	return cmd
}

func (a *app) listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withBackups(cmd, func(manager *storage.BackupManager) error {
				backups, err := manager.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list backups: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(backups) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("Nenhum backup encontrado."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				headers := []string{"NOME", "CRIADO", "TAMANHO", "TRANSAÇÕES", "DESCRIÇÃO"}
				for i, h := range headers {
					headers[i] = cli.TableHeaderStyle.Render(h)
				}
				fmt.Fprintln(w, strings.Join(headers, "\t"))
				for _, b := range backups {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
						b.ID,
						b.CreatedAt.Format("02/01/2006 15:04"),
						formatFileSize(b.FileSize),
						b.Transactions,
						b.Description)
				}
				return w.Flush()
			})
		},
	}
}

func (a *app) restoreBackupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <tag>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !force {
				prompt := fmt.Sprintf("Substituir o banco atual pelo backup %q?", args[0])
				ok, err := cli.NewLineReader(cmd.InOrStdin()).Confirm(cmd.Context(), out, prompt)
				if err != nil || !ok {
					fmt.Fprintln(out, cli.FormatInfo("Restauração cancelada."))
					return nil
				}
			}

			return a.withBackups(cmd, func(manager *storage.BackupManager) error {
				if err := manager.Restore(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to restore backup: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Backup %s restaurado.", args[0])))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

