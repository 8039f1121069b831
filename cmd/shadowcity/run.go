package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/city"
	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/logging"
)

type convertOptions struct {
	configPath string
	projected  bool
	logLevel   string
	logFile    string

	// overrides, applied only when the flag was set
	style           string
	mergeDistance   float64
	clusterSize     float64
	heightVariance  float64
	detail          float64
	minBuildingArea float64
	areaThreshold   float64
	size            float64
	seed            uint64
}

func convertCmd() *cobra.Command {
	return newConvertCmd(&convertOptions{})
}

func newConvertCmd(opts *convertOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input.geojson] [output.geojson]",
		Short: "Merge the buildings of a GeoJSON export and write the model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "style YAML file")
	f.StringVar(&opts.style, "style", config.StyleModern, "artistic style: "+strings.Join(config.Styles(), ", "))
	f.Float64Var(&opts.mergeDistance, "merge-distance", 2.0, "distance within which buildings merge")
	f.Float64Var(&opts.clusterSize, "cluster-size", 3.0, "spacing of artistic detail points")
	f.Float64Var(&opts.heightVariance, "height-variance", 0.2, "height variation within clusters (0-1)")
	f.Float64Var(&opts.detail, "detail", 1.0, "detail level (0-2)")
	f.Float64Var(&opts.minBuildingArea, "min-building-area", 200, "minimum building area in m²")
	f.Float64Var(&opts.areaThreshold, "area-threshold", 1000, "block-combine target block area")
	f.Float64Var(&opts.size, "size", 200, "model size in mm")
	f.BoolVar(&opts.projected, "projected", false, "input coordinates are already in model units")
	f.Uint64Var(&opts.seed, "seed", 0, "roof style seed (0 picks one from the clock)")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level")
	f.StringVar(&opts.logFile, "log-file", "", "also write JSON logs to this rotating file")
	return cmd
}

func validateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config [style.yaml]",
		Short: "Check a style file without running a conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (style %s, %s merging)\n", args[0], style.ArtisticStyle, style.Mode())
			return nil
		},
	}
}

func runConvert(cmd *cobra.Command, opts *convertOptions, in, out string) error {
	logger, err := logging.New(opts.logLevel, opts.logFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	style, err := resolveStyle(cmd, opts)
	if err != nil {
		return err
	}

	logger.Info("Converting",
		zap.String("input", in),
		zap.String("output", out),
		zap.String("style", style.ArtisticStyle),
		zap.Bool("projected", opts.projected))

	p := &city.Pipeline{Style: style, Logger: logger}
	m, err := p.Convert(in, out, opts.projected)
	if err != nil {
		logger.Error("Conversion failed", zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d buildings to %s (%s, seed %d)\n", len(m.Buildings), out, m.Strategy, m.Seed)
	return nil
}

// resolveStyle starts from the config file (or the defaults) and applies
// every flag the user set explicitly.
func resolveStyle(cmd *cobra.Command, opts *convertOptions) (config.Style, error) {
	style := config.Default()
	if opts.configPath != "" {
		var err error
		if style, err = config.Load(opts.configPath); err != nil {
			return config.Style{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("style") || opts.configPath == "" {
		style.ArtisticStyle = opts.style
	}
	if changed("merge-distance") {
		style.MergeDistance = opts.mergeDistance
	}
	if changed("cluster-size") {
		style.ClusterSize = opts.clusterSize
	}
	if changed("height-variance") {
		style.HeightVariance = opts.heightVariance
	}
	if changed("detail") {
		style.DetailLevel = opts.detail
	}
	if changed("min-building-area") {
		style.MinBuildingArea = opts.minBuildingArea
	}
	if changed("area-threshold") {
		style.AreaThreshold = opts.areaThreshold
	}
	if changed("size") {
		style.Size = opts.size
	}
	if changed("seed") {
		style.Seed = opts.seed
	}

	if err := style.Validate(); err != nil {
		return config.Style{}, fmt.Errorf("invalid style: %w", err)
	}
	return style, nil
}
