package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-trips/internal/price"
)

func newPriceCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Check prices",
		Long: `The price command validates and formats prices with the rules of the
trip creation form.`,
	}

	cmd.AddCommand(
		newPriceValidateCmd(c),
		newPriceFormatCmd(c),
	)

	return cmd
}

func newPriceValidateCmd(c *cli) *cobra.Command {
	var (
		minPrice      float64
		maxPrice      float64
		allowZero     bool
		decimalPlaces int
	)

	cmd := &cobra.Command{
		Use:   "validate VALUE",
		Short: "Validate a price",
		Long: `Validate a price as typed by a user. The command fails when the price
is rejected.`,
		Example: `  # Check a formatted price
  wtripctl price validate '$1,200.50'

  # Accept free trips and whole amounts only
  wtripctl price validate 0 --allow-zero --min 0 --decimal-places 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []price.Option
			fs := cmd.Flags()
			if fs.Changed("min") {
				opts = append(opts, price.WithMin(minPrice))
			}
			if fs.Changed("max") {
				opts = append(opts, price.WithMax(maxPrice))
			}
			if fs.Changed("allow-zero") {
				opts = append(opts, price.WithAllowZero(allowZero))
			}
			if fs.Changed("decimal-places") {
				opts = append(opts, price.WithDecimalPlaces(decimalPlaces))
			}

			result := price.ValidatePrice(args[0], opts...)
			done, err := c.print(cmd, result)
			if err != nil {
				return err
			}
			if !done && result.IsValid {
				fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", result.Value)
			}
			if !result.IsValid {
				return fmt.Errorf("invalid price: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minPrice, "min", price.DefaultMin, "smallest accepted price")
	cmd.Flags().Float64Var(&maxPrice, "max", price.DefaultMax, "largest accepted price")
	cmd.Flags().BoolVar(&allowZero, "allow-zero", false, "accept a price of zero")
	cmd.Flags().IntVar(&decimalPlaces, "decimal-places", price.DefaultDecimalPlaces, "fraction digits accepted")

	return cmd
}

// priceFormats is what price format reports for one value
type priceFormats struct {
	Input    string `json:"input" yaml:"input"`
	Display  string `json:"display" yaml:"display"`
	Backend  string `json:"backend" yaml:"backend"`
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`
}

func newPriceFormatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "format VALUE",
		Short: "Show how a price is displayed and sent",
		Example: `  # Show the renderings of a typed price
  wtripctl price format 1234.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := priceFormats{
				Input:   args[0],
				Display: price.FormatInput(args[0]),
				Backend: price.ParseToBackendFormat(args[0]),
			}
			if result := price.ValidatePrice(args[0], price.WithAllowZero(true), price.WithMin(0)); result.IsValid {
				f.Currency = result.Value
			}

			if done, err := c.print(cmd, f); done {
				return err
			}
			tw := newKeyValueWriter(cmd)
			fmt.Fprintf(tw, "Display:\t%s\n", f.Display)
			fmt.Fprintf(tw, "Backend:\t%s\n", f.Backend)
			if f.Currency != "" {
				fmt.Fprintf(tw, "Currency:\t%s\n", f.Currency)
			}
			return tw.Flush()
		},
	}
}
