package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
)

var errUsage = errors.New("no command given")

func runCLI() error {
	if len(os.Args) < 2 {
		usage()
		return errUsage
	}

	switch os.Args[1] {
	case "scan":
		return runScan(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func runScan(args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	opts.configureOutput()

	checkPrivileges()

	scanner, err := NewScanner(*opts)
	if err != nil {
		return err
	}

	// Enrichment needs the complete result set, so printing waits for the
	// sweep to end. Otherwise replies are printed as they arrive.
	enrich := opts.Vendor || opts.MDNS
	if !enrich {
		scanner.OnReply = func(h Host) { printHost(h, opts.JSON) }
	}

	hosts, err := scanner.Scan()
	if err != nil {
		return err
	}
	if !enrich {
		return nil
	}

	if opts.Vendor {
		enrichVendors(hosts)
	}
	if opts.MDNS {
		mergeMDNS(hosts, scanner.iface, opts.MDNSTimeout)
	}
	for _, h := range hosts {
		printHost(h, opts.JSON)
	}
	return nil
}

func parseOptions(args []string) (*Options, error) {
	opts := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`arpsweep broadcasts an ARP request to every host of a local subnet and reports who answers.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&opts.IfaceName, "iface", "i", envutil.GetEnvOrDefault("ARPSWEEP_IFACE", ""), "network interface to sweep (e.g. eth0)"),
		flagSet.StringVarP(&opts.Source, "source", "s", "", "source IPv4 address for requests (default: interface address)"),
		flagSet.IntVarP(&opts.Prefix, "prefix", "p", 0, "subnet prefix length 1-32 (default: interface mask)"),
		flagSet.StringVarP(&opts.Engine, "engine", "e", defaultEngine, "link transport ("+strings.Join(engineNames(), ", ")+")"),
	)

	flagSet.CreateGroup("rate-limit", "Rate-Limit",
		flagSet.IntVarP(&opts.Batch, "batch", "b", defaultBatchSize, "requests sent between pauses"),
		flagSet.DurationVarP(&opts.Pause, "pause", "bp", defaultBatchPause, "pause after each batch"),
		flagSet.IntVarP(&opts.RatePPS, "rate-limit", "rl", 0, "maximum requests per second (0 = no limit)"),
		flagSet.DurationVarP(&opts.Quiescence, "quiescence", "q", defaultQuiescence, "stop once no reply arrives for this long"),
		flagSet.IntVar(&opts.ReadBuffer, "read-buffer", defaultReadBuffer, "socket receive buffer in bytes (0 = system default)"),
		flagSet.BoolVar(&opts.NoFilter, "no-filter", false, "do not install the kernel ARP reply filter"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&opts.JSON, "json", "j", false, "write results as JSON lines"),
		flagSet.BoolVar(&opts.Vendor, "vendor", false, "look up NIC vendors from the OUI table"),
		flagSet.BoolVar(&opts.MDNS, "mdns", false, "resolve hostnames over mDNS after the sweep"),
		flagSet.DurationVar(&opts.MDNSTimeout, "mdns-timeout", 2*time.Second, "how long to listen for mDNS answers"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.StringVar(&opts.ConfigFile, "config", "", "flag configuration file (yaml)"),
		flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&opts.Debug, "debug", false, "show debug output"),
		flagSet.BoolVar(&opts.Silent, "silent", false, "show only results"),
		flagSet.BoolVarP(&opts.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	// goflags parses os.Args when given nothing
	if len(args) == 0 {
		args = []string{"--"}
	}
	if err := flagSet.Parse(args...); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		if err := flagSet.MergeConfigFile(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := opts.applyPositional(flagSet.CommandLine.Args()); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// applyPositional accepts "<interface> <source_ip> <prefix>" in place of
// the flags.
func (options *Options) applyPositional(args []string) error {
	if len(args) > 3 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args[3:], " "))
	}
	if len(args) > 0 {
		options.IfaceName = args[0]
	}
	if len(args) > 1 {
		options.Source = args[1]
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 || n > 32 {
			return fmt.Errorf("invalid prefix length %q: must be between 1 and 32", args[2])
		}
		options.Prefix = n
	}
	return nil
}

func (options *Options) validate() error {
	if options.Prefix < 0 || options.Prefix > 32 {
		return fmt.Errorf("invalid prefix length %d: must be between 1 and 32", options.Prefix)
	}
	if options.Source != "" {
		if _, err := ParseAddr(options.Source); err != nil {
			return err
		}
	}
	if options.Batch < 1 {
		return fmt.Errorf("invalid batch size %d", options.Batch)
	}
	if options.Pause < 0 {
		return fmt.Errorf("invalid pause %s", options.Pause)
	}
	if options.Quiescence < time.Millisecond {
		return fmt.Errorf("invalid quiescence window %s: must be at least 1ms", options.Quiescence)
	}
	if options.RatePPS < 0 {
		return fmt.Errorf("invalid rate limit %d", options.RatePPS)
	}
	return nil
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	gologger.DefaultLogger.SetMaxLevel(options.logLevel())
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
}

// logLevel picks the most detailed level asked for. Warnings are shown by
// default; -silent hides everything but results.
func (options *Options) logLevel() levels.Level {
	switch {
	case options.Silent:
		return levels.LevelSilent
	case options.Verbose:
		return levels.LevelVerbose
	case options.Debug:
		return levels.LevelDebug
	default:
		return levels.LevelWarning
	}
}

func usage() {
	fmt.Println(`arpsweep: active ARP sweep of a local subnet

Usage:
  arpsweep scan <interface> <source_ip> <prefix>
  arpsweep scan [-i eth0] [-s 192.168.1.10] [-p 24] [-json] [-vendor] [-mdns]

Run "arpsweep scan -h" for all flags.`)
}
