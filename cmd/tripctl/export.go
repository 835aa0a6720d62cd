package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		owner    string
		tripIDs  []string
		outDir   string
		local    bool
		noPhotos bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trips of an owner to a trip file",
		Long: `Export writes one trip file into --out. With a single --trip the file
holds that trip; with several, or none (every trip of the owner), it holds an array.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids := make([]uuid.UUID, len(tripIDs))
			for i, raw := range tripIDs {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("--trip %q is not a trip id", raw)
				}
				ids[i] = id
			}
			opts := tripfile.DefaultExportOptions()
			opts.IncludePhotos = !noPhotos
			if local {
				opts.DateFormat = tripfile.DateFormatLocal
			}

			b, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()
			ctx := ownerContext(cmd.Context(), owner)

			var (
				aggs []tripfile.Aggregate
				name string
			)
			switch len(ids) {
			case 0:
				aggs, err = b.exports.ExportAll(ctx, opts)
			default:
				aggs, err = b.exports.ExportTrips(ctx, ids, opts)
			}
			if err != nil {
				return err
			}

			var data []byte
			if len(ids) == 1 && len(aggs) == 1 {
				name = tripfile.FileName(aggs[0].Trip.Name, c.now())
				data, err = tripfile.Marshal(aggs[0])
			} else {
				name = tripfile.MultiFileName(c.now())
				if aggs == nil {
					aggs = []tripfile.Aggregate{}
				}
				data, err = tripfile.Marshal(aggs)
			}
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d trip(s) to %s\n", len(aggs), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user id owning the trips")
	cmd.Flags().StringSliceVar(&tripIDs, "trip", nil, "trip id to export (repeatable)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory the file is written to")
	cmd.Flags().BoolVar(&local, "local", false, "write dates in the configured locale's format")
	cmd.Flags().BoolVar(&noPhotos, "no-photos", false, "leave photo lists out")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
