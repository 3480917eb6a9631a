package cmd

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
)

//go:embed seeds.yaml
var defaultSeeds []byte

// seedFile is the layout of a seed data file
type seedFile struct {
	Trips []v1.TripInput `yaml:"trips"`
}

func loadSeeds(data []byte) ([]v1.TripInput, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing seed data: %w", err)
	}
	if len(f.Trips) == 0 {
		return nil, fmt.Errorf("seed data holds no trips")
	}
	return f.Trips, nil
}

func newTripSeedCmd(c *cli) *cobra.Command {
	var (
		file      string
		printCurl bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample trips",
		Long: `Create a set of sample trips on the backend. The built-in set is used
unless --file names a YAML file with a top-level "trips" list.

With --print-curl nothing is sent; the equivalent curl commands are printed
instead.`,
		Example: `  # Load the built-in sample trips
  wtripctl trip seed

  # Show what would be sent
  wtripctl trip seed --print-curl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := defaultSeeds
			if file != "" {
				var err error
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("error reading %s: %w", file, err)
				}
			}
			trips, err := loadSeeds(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printCurl {
				endpoint := c.connection().Server + "/trips"
				for i, trip := range trips {
					body, err := json.Marshal(trip)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "# Trip %d: %s\n", i+1, trip.Name)
					fmt.Fprintf(out, "curl -X POST %s \\\n  -H \"Content-Type: application/json\" \\\n  -d '%s'\n\n", endpoint, body)
				}
				return nil
			}

			api := c.client()
			failed := 0
			for i := range trips {
				created, err := api.CreateTrip(cmd.Context(), &trips[i])
				if err != nil {
					failed++
					fmt.Fprintf(out, "Failed:  %s (%v)\n", trips[i].Name, err)
					continue
				}
				fmt.Fprintf(out, "Created: %s (ID %s)\n", created.Name, created.ID)
			}

			fmt.Fprintf(out, "Seeded %d of %d trips\n", len(trips)-failed, len(trips))
			if failed > 0 {
				return fmt.Errorf("%d of %d trips could not be created", failed, len(trips))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")
	cmd.Flags().BoolVar(&printCurl, "print-curl", false, "print curl commands instead of sending")

	return cmd
}
