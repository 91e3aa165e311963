package cli

import (
	"context"
	"fmt"

	"guidechat/internal/reference"

	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	var withWards bool

	cmd := &cobra.Command{
		Use:   "snapshot [path]",
		Short: "Fetch reference data and write it to a YAML snapshot",
		Long: `Fetch provinces and amenities from the upstream APIs and write them to a
YAML file. The server reads this file when the upstream APIs are unreachable.

The path defaults to REFERENCE_SNAPSHOT_PATH.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Reference.SnapshotPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no snapshot path: pass one or set REFERENCE_SNAPSHOT_PATH")
			}

			// the fetch must not fall back to the file being replaced
			cache := reference.NewCache(
				newPlaceClient(cfg),
				newAmenityClient(cfg),
				reference.WithLogger(log),
			)
			ctx, cancel := context.WithTimeout(cmd.Context(), referenceLoadTimeout)
			defer cancel()
			if err := cache.Load(ctx); err != nil {
				return fmt.Errorf("reference data incomplete, snapshot not written: %w", err)
			}

			if withWards {
				for _, p := range cache.Provinces() {
					wards := cache.Wards(cmd.Context(), p.Name)
					log.Debug().Str("province", p.Name).Int("wards", len(wards)).Msg("fetched wards")
				}
			}

			snap := cache.Snapshot()
			if err := reference.WriteSnapshot(path, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d provinces, %d amenities, wards for %d provinces to %s\n",
				len(snap.Provinces), len(snap.Amenities), len(snap.Wards), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withWards, "wards", false, "also fetch the ward list of every province")
	return cmd
}
