package main

import (
	"fmt"

	breedcache "github.com/ericselin/breedcache"
	"github.com/spf13/cobra"
)

func newCountCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count [breed...]",
		Short: "Print the number of sub-breeds of each breed",
		Long: `Print the number of sub-breeds of each breed.

Breeds that cannot be found have zero sub-breeds. Without arguments the
breeds from the config file are counted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			breeds := args
			if len(breeds) == 0 {
				breeds = o.config.Breeds
			}

			provider, closeStore, err := o.provider(false)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			for _, breed := range breeds {
				n := breedcache.CountSubBreeds(ctx, breed, provider)
				fmt.Fprintf(cmd.OutOrStdout(), "%s has %d sub breeds\n", breed, n)
			}
			o.logger.Debug().Int("callsMade", provider.CallsMade()).Msg("Done counting")
			return nil
		},
	}
}
