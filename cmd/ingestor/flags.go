package main

import (
	"errors"
	"flag"
	"io"
	"strings"
)

// AppFlags holds the command line options.
type AppFlags struct {
	GlobalConfigFile string
	EnvFile          string
	Mode             string
	MD5              string
	SHA1             string
	ExportPath       string
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("ingestor", flag.ContinueOnError)
	fs.SetOutput(output)

	flags := AppFlags{}
	var configAlias, modeAlias string

	fs.StringVar(&flags.GlobalConfigFile, "config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	fs.StringVar(&configAlias, "c", "", "Alias for -config")
	fs.StringVar(&flags.EnvFile, "env", ".env", "Path to a dotenv file loaded before the configuration")
	fs.StringVar(&flags.Mode, "mode", "", "Mode to run: automated, onetime, lookup or export (overrides config file if set)")
	fs.StringVar(&modeAlias, "m", "", "Alias for -mode")
	fs.StringVar(&flags.MD5, "md5", "", "lookup mode: MD5 digest to search for")
	fs.StringVar(&flags.SHA1, "sha1", "", "lookup mode: SHA-1 digest to search for")
	fs.StringVar(&flags.ExportPath, "out", "", "export mode: parquet output path (overrides export_config.output_path)")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	if flags.GlobalConfigFile == "" {
		flags.GlobalConfigFile = configAlias
	}
	if flags.Mode == "" {
		flags.Mode = modeAlias
	}
	flags.Mode = strings.ToLower(strings.TrimSpace(flags.Mode))

	if flags.Mode == "lookup" && flags.MD5 == "" && flags.SHA1 == "" {
		return AppFlags{}, errors.New("lookup mode requires -md5 or -sha1")
	}
	return flags, nil
}
