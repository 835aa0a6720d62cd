package main

import (
	"bytes"
	"errors"

	"github.com/spf13/cobra"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

var errImportFailed = errors.New("import finished with errors")

func newImportCmd(c *cli) *cobra.Command {
	var (
		owner      string
		backup     bool
		substitute bool
		onFailure  string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a trip file into an owner's account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readTripFile(args[0])
			if err != nil {
				return err
			}
			opts := tripfile.DefaultImportOptions()
			opts.CreateBackupBefore = backup
			opts.SubstituteExisting = substitute
			opts.OnPartialFailure = tripfile.PartialFailurePolicy(onFailure)

			b, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			res, vr, err := b.imports.ImportFile(ownerContext(cmd.Context(), owner), data, opts)
			if err != nil {
				if !vr.Valid && len(vr.Errors) > 0 {
					_ = printJSON(cmd.OutOrStdout(), vr)
				}
				return err
			}
			return reportImport(cmd, res)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user id the trips are imported for")
	cmd.Flags().BoolVar(&backup, "backup", false, "back up the owner's trips before writing")
	cmd.Flags().BoolVar(&substitute, "substitute", false, "replace trips with the same name and start date")
	cmd.Flags().StringVar(&onFailure, "on-partial-failure", string(tripfile.PartialFailureKeep), "keep or compensate")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newRestoreCmd(c *cli) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore a backup file, replacing the owner's copies of its trips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readTripFile(args[0])
			if err != nil {
				return err
			}

			b, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			res, err := b.imports.RestoreBackup(ownerContext(cmd.Context(), owner), bytes.NewReader(data))
			if err != nil {
				return err
			}
			return reportImport(cmd, res)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user id the backup belongs to")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// reportImport prints res and turns an unsuccessful import into a non-zero exit.
func reportImport(cmd *cobra.Command, res tripfile.ImportResult) error {
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Success {
		return errImportFailed
	}
	return nil
}
