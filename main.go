package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vendidero/shiptastic-ups/internal/server"
	"github.com/vendidero/shiptastic-ups/internal/storage"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var carrierName string

var rootCmd = &cobra.Command{
	Use:     "shiptastic-ups",
	Short:   "Shiptastic UPS - book, cancel and locate UPS shipments",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var labelCmd = &cobra.Command{
	Use:   "label [file]",
	Short: "Book a label from a JSON label file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLabel,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <tracking-number>",
	Short: "Cancel a booked label",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check the carrier credentials",
	RunE:  runTestConnection,
}

var pickupPointsCmd = &cobra.Command{
	Use:   "pickup-points",
	Short: "Search pickup points near an address",
	RunE:  runPickupPoints,
}

var pickupFlags struct {
	country    string
	postalCode string
	city       string
	street     string
	limit      int
	id         string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&carrierName, "carrier", "ups", "carrier to use")

	pickupPointsCmd.Flags().StringVar(&pickupFlags.country, "country", "", "ISO country code")
	pickupPointsCmd.Flags().StringVar(&pickupFlags.postalCode, "postal-code", "", "postal code")
	pickupPointsCmd.Flags().StringVar(&pickupFlags.city, "city", "", "city")
	pickupPointsCmd.Flags().StringVar(&pickupFlags.street, "street", "", "street and house number")
	pickupPointsCmd.Flags().IntVar(&pickupFlags.limit, "limit", 10, "maximum number of results")
	pickupPointsCmd.Flags().StringVar(&pickupFlags.id, "id", "", "look up a single pickup point")
	_ = pickupPointsCmd.MarkFlagRequired("country")

	rootCmd.AddCommand(serveCmd, labelCmd, cancelCmd, testConnectionCmd, pickupPointsCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, registry, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting Shiptastic UPS",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	srv := server.New(server.Config{Port: cfg.Port}, registry, initArtifactStore(cfg), logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runLabel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var label shipper.Label
	if err := json.NewDecoder(in).Decode(&label); err != nil {
		return fmt.Errorf("reading label: %w", err)
	}

	cfg, _, registry, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	carrier, err := registry.Get(carrierName)
	if err != nil {
		return err
	}

	artifact, labelErr := carrier.GetLabel(ctx, &label)
	if artifact == nil {
		return labelErr
	}

	result := map[string]any{
		"tracking_number": artifact.TrackingNumber,
		"charges":         artifact.Charges,
	}
	if labelErr != nil {
		result["error"] = labelErr.Error()
	}

	if store := initArtifactStore(cfg); store != nil {
		paths, err := storage.SaveArtifact(ctx, store, artifact)
		if err != nil {
			return err
		}
		result["files"] = paths
	}

	if err := printJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	return labelErr
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, _, registry, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	carrier, err := registry.Get(carrierName)
	if err != nil {
		return err
	}

	if err := carrier.CancelLabel(ctx, &shipper.Label{TrackingNumber: args[0]}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", args[0])
	return nil
}

func runTestConnection(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, _, registry, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	results := registry.TestConnections(ctx)
	if err := printJSON(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	for name, ok := range results {
		if !ok {
			return fmt.Errorf("%s: connection test failed", name)
		}
	}
	return nil
}

func runPickupPoints(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, _, registry, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	carrier, err := registry.Get(carrierName)
	if err != nil {
		return err
	}

	address := shipper.Address{
		Line1:       pickupFlags.street,
		City:        pickupFlags.city,
		PostalCode:  pickupFlags.postalCode,
		CountryCode: pickupFlags.country,
	}

	if pickupFlags.id != "" {
		point, err := carrier.FindPickupPointByID(ctx, pickupFlags.id, address)
		if err != nil {
			return err
		}
		if point == nil {
			return fmt.Errorf("pickup point %s not found", pickupFlags.id)
		}
		return printJSON(cmd.OutOrStdout(), point)
	}

	points, err := carrier.FindPickupPoints(ctx, address, pickupFlags.limit)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), points)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
