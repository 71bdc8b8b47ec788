package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync/internal/auth"
	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/pkg/constants"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// addTargetFlags adds the flags shared by sync and delete.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "storage type of the objects (cloud_storage)")
	cmd.Flags().String("project-id", "", "project holding the entry group")
	cmd.Flags().String("entry-group-name", "", "full entry group name: projects/{project}/locations/{location}/entryGroups/{id}")
	cmd.Flags().String("location", "", "location of the tag template (default us-central1)")
	cmd.Flags().Bool("dry-run", false, "read the catalog but skip every write")
	cmd.Flags().Duration("timeout", constants.CommandTimeout, "timeout for the whole run")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file after the run")
}

func (a *App) newSyncCommand(use, alias, group string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		GroupID: group,
		Short:   "Sync object storage entries into the catalog",
		Long: `Sync creates or updates one catalog entry and sync details tag per stored
object, then deletes the entries of the group whose object is gone.

Per-entry failures are reported in the summary and do not fail the command.`,
		Example: `  catalogsync sync --type cloud_storage --project-id my-project \
    --entry-group-name projects/my-project/locations/us-central1/entryGroups/my_bucket_files \
    --bucket-prefix my-bucket`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), pkgsync.ModeSync)
		},
	}
	if alias != "" {
		cmd.Aliases = []string{alias}
	}
	addTargetFlags(cmd)
	cmd.Flags().String("bucket-prefix", "", "only sync buckets whose name starts with this prefix")
	cmd.Flags().StringSlice("include", nil, "only sync objects whose name matches a glob or regex (repeatable)")
	cmd.Flags().StringSlice("exclude", nil, "skip objects whose name matches a glob or regex (repeatable)")
	return cmd
}

func (a *App) newDeleteCommand(use, alias, group string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		GroupID: group,
		Short:   "Delete every object storage entry of the entry group",
		Long: `Delete removes every entry of the storage system from the entry group and
then the entry group itself. Storage is not read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), pkgsync.ModeDelete)
		},
	}
	if alias != "" {
		cmd.Aliases = []string{alias}
	}
	addTargetFlags(cmd)
	return cmd
}

// newObjectStorageCommand groups sync-entries and delete-entries under
// object-storage, the command layout of the connector scripts.
func (a *App) newObjectStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object-storage",
		Short: "Object storage connector commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.newSyncCommand("sync-entries", "", ""))
	cmd.AddCommand(a.newDeleteCommand("delete-entries", "", ""))
	return cmd
}

func (a *App) newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect Google Cloud credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the local Application Default Credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			details := adc.BuildDetails()
			if brief, _ := cmd.Flags().GetBool("brief"); brief {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), adc.FormatBrief(details))
				return err
			}
			return a.print(cmd, details)
		},
	}
	status.Flags().Bool("brief", false, "print a one-line summary")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Load credentials the way sync does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := auth.Detect(cmd.Context(), constants.CredentialsTimeout)
			if err != nil {
				return err
			}
			project, _ := creds.ProjectID(cmd.Context())
			if project == "" {
				project = "not set"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Credentials OK (project: %s)\n", project)
			return err
		},
	}

	cmd.AddCommand(status, verify)
	return cmd
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "catalogsync %s (commit %s, built %s by %s)\n",
				a.version, a.commit, a.date, a.builtBy)
			return err
		},
	}
}
