package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

var errInvalidFile = errors.New("file is not a valid trip file")

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a trip file without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readTripFile(args[0])
			if err != nil {
				return err
			}
			res := tripfile.ValidateJSON(data)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalidFile
			}
			return nil
		},
	}
}
