// Command planner is a terminal front end for the trip-planning services.
// It loads configuration from the environment (and a .env file when present)
// and prints the same display strings the HTTP API returns.
package main

import (
	"fmt"
	"os"

	"github.com/ecovoyage/ecovoyage-backend/config"
	"github.com/ecovoyage/ecovoyage-backend/internal/app"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultOrigin      = "San Francisco"
	defaultDestination = "Los Angeles"
)

var (
	flagItinerary  bool
	flagMode       string
	flagLimit      int
	flagRealtime   bool
	flagCuisine    string
	flagPriceLevel int
	flagMinRating  float64
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, relying on environment variables")
	}

	logger.IsTest = true // keep service logs quiet on the terminal
	logger.InitLogger()
	defer logger.Close()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg), nil
}

// tripPlaces resolves positional origin/destination arguments with defaults.
func tripPlaces(args []string) (string, string) {
	origin, destination := defaultOrigin, defaultDestination
	if len(args) > 0 {
		origin = args[0]
	}
	if len(args) > 1 {
		destination = args[1]
	}
	return origin, destination
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner [origin] [destination]",
		Short: "Sustainable travel planner",
		Long: "Planner assembles route, weather, air quality and emissions data for a trip\n" +
			"and can draft a sustainable itinerary for the destination.",
		Args: cobra.MaximumNArgs(2),
		RunE: runTrip,
	}

	root.Flags().BoolVar(&flagItinerary, "itinerary", false, "generate a full itinerary instead of the trip overview")
	root.Flags().StringVar(&flagMode, "mode", "", "force a transport mode for emission estimates (e.g. train, car_electric)")

	root.AddCommand(hotelsCmd(), flightsCmd(), restaurantsCmd())
	return root
}

func runTrip(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}

	origin, destination := tripPlaces(args)
	ctx := cmd.Context()

	if flagItinerary {
		itinerary, _ := application.Itineraries.Create(ctx, origin, destination, flagMode)
		fmt.Println(itinerary)
		return nil
	}

	route := application.Routes.Resolve(ctx, origin, destination, "driving")
	fmt.Printf("Trip: %s -> %s\n", origin, destination)
	if route.DistanceText != "" {
		fmt.Printf("Route: %s (%s)\n", route.DistanceText, route.DurationText)
	} else {
		fmt.Printf("Route: %s\n", route.Err)
	}

	if route.DistanceKm != nil {
		mode := flagMode
		if mode == "" {
			mode = "train"
		}
		fmt.Println(application.Emissions.Estimate(mode, *route.DistanceKm))
	}

	fmt.Println(application.Weather.Fetch(ctx, destination))
	fmt.Println(application.AirQuality.Fetch(ctx, destination))
	fmt.Println(application.LocalTime.Fetch(ctx, destination))
	return nil
}

func hotelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotels <city>",
		Short: "List hotels in a city, cheapest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			if flagRealtime {
				fmt.Println(application.Pricing.Search(cmd.Context(), args[0], flagLimit))
			} else {
				fmt.Println(application.Hotels.Search(cmd.Context(), args[0], flagLimit))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 5, "maximum number of results")
	cmd.Flags().BoolVar(&flagRealtime, "realtime", false, "use live Amadeus prices when credentials are configured")
	return cmd
}

func flightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flights <origin> <destination>",
		Short: "List one-way flight offers, cheapest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			fmt.Println(application.Flights.Search(cmd.Context(), args[0], args[1], flagLimit))
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 5, "maximum number of results")
	return cmd
}

func restaurantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restaurants <city>",
		Short: "List restaurants in a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			fmt.Println(application.Restaurants.Search(cmd.Context(), args[0], flagCuisine, flagPriceLevel, flagMinRating, flagLimit))
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 5, "maximum number of results")
	cmd.Flags().StringVar(&flagCuisine, "cuisine", "", "filter by cuisine tag")
	cmd.Flags().IntVar(&flagPriceLevel, "price-level", 0, "budget cap from 1 (cheap) to 4 (splurge)")
	cmd.Flags().Float64Var(&flagMinRating, "min-rating", 0, "minimum star rating")
	return cmd
}
