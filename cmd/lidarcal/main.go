// Command lidarcal runs the polarization calibration or the telecover
// normalization on a JSON measurement bundle and prints a JSON summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/lidarcal/internal/config"
	"github.com/banshee-data/lidarcal/internal/monitoring"
	"github.com/banshee-data/lidarcal/internal/polarization"
	"github.com/banshee-data/lidarcal/internal/telecover"
	"github.com/banshee-data/lidarcal/internal/version"
)

const (
	modePolarization = "pcb"
	modeTelecover    = "telecover"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lidarcal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", modePolarization, "processing mode: pcb or telecover")
	configPath := fs.String("config", "", "path to a JSON configuration file (defaults when empty)")
	inputPath := fs.String("input", "", "path to the JSON measurement bundle")
	quiet := fs.Bool("quiet", false, "suppress per-channel log output")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if *inputPath == "" {
		fmt.Fprintln(stderr, "-input is required")
		fs.Usage()
		return 2
	}

	if *quiet {
		monitoring.SetLogger(nil)
	} else {
		monitoring.SetLogger(log.New(stderr, "", log.LstdFlags).Printf)
	}

	b, err := loadBundle(*inputPath)
	if err != nil {
		fmt.Fprintf(stderr, "lidarcal: %v\n", err)
		return 1
	}

	var summary interface{}
	switch *mode {
	case modePolarization:
		summary, err = runPolarization(ctx, b, *configPath)
	case modeTelecover:
		summary, err = runTelecover(ctx, b, *configPath)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		fmt.Fprintf(stderr, "lidarcal: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		fmt.Fprintf(stderr, "lidarcal: encode summary: %v\n", err)
		return 1
	}
	return 0
}

func runPolarization(ctx context.Context, b *bundle, configPath string) (interface{}, error) {
	cfg := &config.PolarizationConfig{}
	if configPath != "" {
		var err error
		if cfg, err = config.LoadPolarizationConfig(configPath); err != nil {
			return nil, err
		}
	}
	in, err := b.polarizationInput()
	if err != nil {
		return nil, err
	}
	report, err := polarization.Run(ctx, in, polarization.SettingsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return summarizePolarization(report), nil
}

func runTelecover(ctx context.Context, b *bundle, configPath string) (interface{}, error) {
	cfg := &config.TelecoverConfig{}
	if configPath != "" {
		var err error
		if cfg, err = config.LoadTelecoverConfig(configPath); err != nil {
			return nil, err
		}
	}
	in, err := b.telecoverInput()
	if err != nil {
		return nil, err
	}
	report, err := telecover.Run(ctx, in, telecover.SettingsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return summarizeTelecover(report), nil
}
