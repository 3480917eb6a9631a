package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
	"github.com/wrale/wrale-trips/internal/itinerary"
	"github.com/wrale/wrale-trips/internal/price"
	"github.com/wrale/wrale-trips/internal/wtripctl/util"
)

func newTripCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trip",
		Aliases: []string{"trips"},
		Short:   "Manage trips",
		Long: `The trip command provides subcommands for managing the trips stored by
the backend. Prices given on the command line are validated with the same
rules as the creation form of the web front-end before anything is sent.`,
	}

	cmd.AddCommand(
		newTripListCmd(c),
		newTripGetCmd(c),
		newTripCreateCmd(c),
		newTripUpdateCmd(c),
		newTripDeleteCmd(c),
		newTripSeedCmd(c),
	)

	return cmd
}

func newTripListCmd(c *cli) *cobra.Command {
	var (
		style   string
		country string
		query   string
		page    int
		size    int
		sortBy  []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trips",
		Long: `List trips. At most one filter applies, checked in the order --query,
--style, --country. Any of --page, --size or --sort switches to the paged
listing.`,
		Example: `  # List every trip
  wtripctl trip list

  # Trips of one travel style, as JSON
  wtripctl trip list --style Adventure -o json

  # Second page of five trips sorted by price
  wtripctl trip list --page 1 --size 5 --sort estimatedPrice,asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			ctx := cmd.Context()

			var (
				trips  []v1.Trip
				paging *v1.TripList
				err    error
			)
			flags := cmd.Flags()
			switch {
			case query != "":
				trips, err = api.SearchTrips(ctx, query)
			case style != "":
				trips, err = api.ListTripsByTravelStyle(ctx, style)
			case country != "":
				trips, err = api.ListTripsByCountry(ctx, country)
			case flags.Changed("page") || flags.Changed("size") || flags.Changed("sort"):
				paging, err = api.ListTripsPaged(ctx, v1.PageRequest{Page: page, Size: size, Sort: sortBy})
				if err == nil {
					trips = paging.Items
				}
			default:
				trips, err = api.ListTrips(ctx)
			}
			if err != nil {
				return fmt.Errorf("error listing trips: %w", err)
			}

			if paging != nil {
				if done, err := c.print(cmd, paging); done {
					return err
				}
			} else if done, err := c.print(cmd, trips); done {
				return err
			}

			out := cmd.OutOrStdout()
			tw := util.NewTabWriter(out)
			fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tDAYS\tPRICE\tSTYLE")
			for _, it := range itinerary.FromAPIList(trips) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					it.ID,
					util.Truncate(it.Name, 32),
					it.Country,
					it.Duration,
					it.EstimatedPrice,
					it.TravelStyle,
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if paging != nil {
				fmt.Fprintf(out, "\nPage %d of %d (%d trips)\n", paging.Number+1, paging.TotalPages, paging.TotalElements)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "only trips of this travel style")
	cmd.Flags().StringVar(&country, "country", "", "only trips to this country")
	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text search")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&size, "size", 20, "trips per page")
	cmd.Flags().StringArrayVar(&sortBy, "sort", nil, "sort expression such as name,asc (repeatable)")

	return cmd
}

func newTripGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a trip",
		Example: `  # Show trip 7 with its day plan
  wtripctl trip get 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trip, err := c.client().GetTrip(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error getting trip %q: %w", args[0], err)
			}

			if done, err := c.print(cmd, trip); done {
				return err
			}
			return printTrip(cmd.OutOrStdout(), itinerary.FromAPI(trip))
		},
	}
}

func printTrip(w io.Writer, it *itinerary.Itinerary) error {
	tw := util.NewTabWriter(w)
	fmt.Fprintf(tw, "ID:\t%s\n", it.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", it.Name)
	fmt.Fprintf(tw, "Country:\t%s\n", it.Country)
	if it.Location.City != "" {
		fmt.Fprintf(tw, "City:\t%s\n", it.Location.City)
	}
	fmt.Fprintf(tw, "Price:\t%s\n", it.EstimatedPrice)
	fmt.Fprintf(tw, "Duration:\t%d days\n", it.Duration)
	for _, field := range [][2]string{
		{"Budget", it.Budget},
		{"Style", it.TravelStyle},
		{"Group", it.GroupType},
		{"Interests", it.Interests},
		{"Payment", it.PaymentLink},
	} {
		if field[1] != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", field[0], field[1])
		}
	}
	fmt.Fprintf(tw, "Images:\t%d\n", len(it.ImageURLs))
	if err := tw.Flush(); err != nil {
		return err
	}

	if it.Description != "" {
		fmt.Fprintf(w, "\n%s\n", it.Description)
	}

	days, ok := it.Days()
	switch {
	case ok:
		fmt.Fprintln(w, "\nItinerary:")
		for _, day := range days {
			fmt.Fprintf(w, "  Day %d", day.Day)
			if day.Location != "" {
				fmt.Fprintf(w, " - %s", day.Location)
			}
			fmt.Fprintln(w)
			for _, a := range day.Activities {
				fmt.Fprintf(w, "    %-10s %s\n", a.Time, a.Description)
			}
		}
	case it.Itinerary != "":
		fmt.Fprintf(w, "\nItinerary:\n%s\n", it.Itinerary)
	}
	return nil
}

// tripFlags are the editable fields of a trip
type tripFlags struct {
	name        string
	description string
	price       string
	duration    int
	budget      string
	style       string
	interests   string
	group       string
	country     string
	city        string
	latitude    float64
	longitude   float64
	osm         string
	images      []string
	plan        string
	bestTime    []string
	weather     []string
	payment     string
}

func (f *tripFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "trip name")
	fs.StringVar(&f.description, "description", "", "short description")
	fs.StringVar(&f.price, "price", "", `estimated price, e.g. "$1,200" or 1200.50`)
	fs.IntVar(&f.duration, "duration", 0, "length in days")
	fs.StringVar(&f.budget, "budget", "", "budget class, e.g. Mid-range")
	fs.StringVar(&f.style, "style", "", "travel style, e.g. Adventure")
	fs.StringVar(&f.interests, "interests", "", "what the trip focuses on")
	fs.StringVar(&f.group, "group", "", "group type, e.g. Couple")
	fs.StringVar(&f.country, "country", "", "destination country")
	fs.StringVar(&f.city, "city", "", "main city")
	fs.Float64Var(&f.latitude, "latitude", 0, "city latitude")
	fs.Float64Var(&f.longitude, "longitude", 0, "city longitude")
	fs.StringVar(&f.osm, "osm", "", "OpenStreetMap link of the city")
	fs.StringArrayVar(&f.images, "image", nil, "image URL, the first is the hero image (repeatable)")
	fs.StringVar(&f.plan, "itinerary", "", "day plan, free text or a JSON list of days")
	fs.StringArrayVar(&f.bestTime, "best-time", nil, "best time to visit (repeatable)")
	fs.StringArrayVar(&f.weather, "weather", nil, "weather note (repeatable)")
	fs.StringVar(&f.payment, "payment-link", "", "booking page URL")
}

// tripFlagNames lists the flags registered by tripFlags
var tripFlagNames = []string{
	"name", "description", "price", "duration", "budget", "style", "interests",
	"group", "country", "city", "latitude", "longitude", "osm", "image",
	"itinerary", "best-time", "weather", "payment-link",
}

// changed reports whether any trip field was given on the command line
func (f *tripFlags) changed(cmd *cobra.Command) bool {
	for _, name := range tripFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply copies every flag given on the command line onto it. The price is
// validated before anything is changed.
func (f *tripFlags) apply(cmd *cobra.Command, it *itinerary.Itinerary) error {
	fs := cmd.Flags()
	if fs.Changed("price") {
		result := price.ValidatePrice(f.price)
		if !result.IsValid {
			return fmt.Errorf("invalid price %q: %s", f.price, result.Error)
		}
		it.EstimatedPrice = result.Value
	}

	strs := []struct {
		flag  string
		value string
		field *string
	}{
		{"name", f.name, &it.Name},
		{"description", f.description, &it.Description},
		{"budget", f.budget, &it.Budget},
		{"style", f.style, &it.TravelStyle},
		{"interests", f.interests, &it.Interests},
		{"group", f.group, &it.GroupType},
		{"country", f.country, &it.Country},
		{"city", f.city, &it.Location.City},
		{"osm", f.osm, &it.Location.OpenStreetMap},
		{"itinerary", f.plan, &it.Itinerary},
		{"payment-link", f.payment, &it.PaymentLink},
	}
	for _, s := range strs {
		if fs.Changed(s.flag) {
			*s.field = s.value
		}
	}

	if fs.Changed("duration") {
		it.Duration = f.duration
	}
	if fs.Changed("latitude") {
		lat := f.latitude
		it.Location.Coordinates[0] = &lat
	}
	if fs.Changed("longitude") {
		lon := f.longitude
		it.Location.Coordinates[1] = &lon
	}
	if fs.Changed("image") {
		it.ImageURLs = f.images
	}
	if fs.Changed("best-time") {
		it.BestTimeToVisit = f.bestTime
	}
	if fs.Changed("weather") {
		it.WeatherInfo = f.weather
	}
	return nil
}

func newTripCreateCmd(c *cli) *cobra.Command {
	var (
		flags tripFlags
		file  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a trip",
		Long: `Create a trip from flags, or from a YAML or JSON file holding one trip.
Flags given together with --file override the values of the file.`,
		Example: `  # Create a trip from flags
  wtripctl trip create --name "Lisbon Weekend" --price '$450' --duration 3 \
    --country Portugal --city Lisbon --image https://example.com/lisbon.jpg

  # Create a trip described in a file
  wtripctl trip create --file lisbon.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			it := &itinerary.Itinerary{}
			if file != "" {
				input, err := readTripFile(file)
				if err != nil {
					return err
				}
				if result := price.ValidatePrice(strconv.FormatFloat(input.EstimatedPrice, 'f', -1, 64)); !result.IsValid {
					return fmt.Errorf("invalid price in %s: %s", file, result.Error)
				}
				it = itinerary.FromAPI(&v1.Trip{TripInput: *input})
			} else {
				for _, required := range []string{"name", "price"} {
					if !cmd.Flags().Changed(required) {
						return fmt.Errorf("--%s is required unless --file is given", required)
					}
				}
			}

			if err := flags.apply(cmd, it); err != nil {
				return err
			}
			input, err := itinerary.ToCreate(it)
			if err != nil {
				return err
			}

			trip, err := c.client().CreateTrip(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("error creating trip: %w", err)
			}

			if done, err := c.print(cmd, trip); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trip %q created with ID %s\n", trip.Name, trip.ID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file describing the trip")

	return cmd
}

func newTripUpdateCmd(c *cli) *cobra.Command {
	var flags tripFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a trip",
		Long: `Update a trip. The trip is fetched first and only the fields given as
flags are changed.`,
		Example: `  # Change the price of trip 7
  wtripctl trip update 7 --price 1350

  # Replace the images
  wtripctl trip update 7 --image https://example.com/a.jpg --image https://example.com/b.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.changed(cmd) {
				return fmt.Errorf("nothing to update, give at least one field flag")
			}

			api := c.client()
			current, err := api.GetTrip(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error getting trip %q: %w", args[0], err)
			}

			it := itinerary.FromAPI(current)
			if err := flags.apply(cmd, it); err != nil {
				return err
			}
			trip, err := itinerary.ToUpdate(it)
			if err != nil {
				return err
			}

			updated, err := api.UpdateTrip(cmd.Context(), trip)
			if err != nil {
				return fmt.Errorf("error updating trip %q: %w", args[0], err)
			}

			if done, err := c.print(cmd, updated); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trip %q updated\n", updated.ID)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func newTripDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a trip",
		Example: `  # Delete trip 7
  wtripctl trip delete 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client().DeleteTrip(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting trip %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trip %q deleted\n", args[0])
			return nil
		},
	}
}

// readTripFile decodes one trip from a YAML or JSON file
func readTripFile(path string) (*v1.TripInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	var input v1.TripInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%s: trip name is required", path)
	}
	return &input, nil
}
