// Package config defines blkd's command-line/config-file surface,
// grounded on the teacher's config/config.go: a go-flags-tagged Flags
// struct embedded in a Config, a package-default Flags literal,
// pre-parse/file-parse/final-parse loadConfig sequence (command line
// always wins), and a LoadAndSetActiveConfig/ActiveConfig global
// accessor pair.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/logs"
)

const (
	defaultConfigFilename = "blkd.conf"
	defaultDataDirname    = "data"
	defaultLogFilename    = "blkd.log"
	defaultLogLevel       = "info"

	defaultNetwork = "main"

	// defaultBlockMaxWeight is the teacher's defaultBlockMaxMass
	// convention carried over to this repository's weight unit.
	defaultBlockMaxWeight = 4_000_000
	defaultBlockMinTxFee  = 1000
	defaultStaking        = false
	defaultStakeTimeIO    = 500 * time.Millisecond
	defaultCheckLevel     = 3
	defaultCheckBlocks    = 288
)

// DefaultHomeDir is blkd's default application data directory, the same
// btcutil.AppDataDir convention the teacher and lnd both use.
var DefaultHomeDir = btcutil.AppDataDir("blkd", false)

var (
	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultHomeDir, defaultDataDirname)
	defaultLogFile    = filepath.Join(DefaultHomeDir, defaultLogFilename)
)

var activeConfig *Config

// Flags defines blkd's command-line and config-file options.
type Flags struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store data"`
	LogFile     string `long:"logfile" description:"File to write log output to"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	TestNet        bool `long:"testnet" description:"Use the test network"`
	RegressionTest bool `long:"regtest" description:"Use the regression test network"`
	SigNet         bool `long:"signet" description:"Use the signet test network"`

	BlockMaxWeight uint64  `long:"blockmaxweight" description:"Maximum block weight to be used when assembling a block"`
	BlockMinTxFee  int64   `long:"blockmintxfee" description:"The minimum transaction fee (in atoms) a transaction must pay to be considered for inclusion by the assembler"`
	PrintPriority  bool    `long:"printpriority" description:"Log the fee/priority of each transaction when assembling a block template"`

	Staking        bool          `long:"staking" description:"Enable the staker thread at startup"`
	StakeTimeIO    time.Duration `long:"staketimio" description:"Base interval between staker search rounds. Valid time units are {ms, s, m, h}"`
	ReserveBalance float64       `long:"reservebalance" description:"Coin balance the staker will not spend or stake"`

	CheckLevel  uint32 `long:"checklevel" description:"How thorough block verification is (0=none .. 4=full script execution)"`
	CheckBlocks uint32 `long:"checkblocks" description:"How many blocks to verify at startup"`
}

// Config is Flags plus the values loadConfig derives from it.
type Config struct {
	*Flags

	NetworkName string
	NetParams   *chaincfg.Params
}

// newConfigParser returns a new command-line flags parser, grounded on
// the teacher's newConfigParser (minus the Windows service group, which
// has no counterpart in this repository).
func newConfigParser(cfgFlags *Flags, options flags.Options) *flags.Parser {
	return flags.NewParser(cfgFlags, options)
}

// LoadAndSetActiveConfig loads the config that can afterward be accessed
// through ActiveConfig.
func LoadAndSetActiveConfig() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	activeConfig = cfg
	return nil
}

// ActiveConfig is a getter for the main config, set once by
// LoadAndSetActiveConfig.
func ActiveConfig() *Config {
	return activeConfig
}

// loadConfig initializes and parses the config using a config file and
// command line options, per the teacher's four-step process: (1) start
// with a default config, (2) pre-parse the command line to check for an
// alternative config file, (3) load the config file on top of the
// defaults, (4) parse the command line again so it always wins.
func loadConfig() (*Config, []string, error) {
	cfgFlags := Flags{
		ConfigFile:     defaultConfigFile,
		DataDir:        defaultDataDir,
		LogFile:        defaultLogFile,
		DebugLevel:     defaultLogLevel,
		BlockMaxWeight: defaultBlockMaxWeight,
		BlockMinTxFee:  defaultBlockMinTxFee,
		Staking:        defaultStaking,
		StakeTimeIO:    defaultStakeTimeIO,
		CheckLevel:     defaultCheckLevel,
		CheckBlocks:    defaultCheckBlocks,
	}

	preCfg := cfgFlags
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	if preCfg.ShowVersion {
		fmt.Println("blkd version", Version())
		os.Exit(0)
	}

	parser := newConfigParser(&cfgFlags, flags.Default)
	if _, statErr := os.Stat(preCfg.ConfigFile); statErr == nil {
		if err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
			if _, ok := err.(*os.PathError); !ok {
				fmt.Fprintf(os.Stderr, "Error parsing config file: %s\n", err)
				return nil, nil, err
			}
		}
	}

	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, "Use -h to show usage")
		}
		return nil, nil, err
	}

	cfgFlags.DataDir = cleanAndExpandPath(cfgFlags.DataDir)
	cfgFlags.LogFile = cleanAndExpandPath(cfgFlags.LogFile)

	if err := os.MkdirAll(cfgFlags.DataDir, 0700); err != nil {
		return nil, nil, errors.Wrapf(err, "creating data directory %s", cfgFlags.DataDir)
	}

	networkName, netParams, err := resolveNetwork(&cfgFlags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if err := logs.ParseAndSetDebugLevels(cfgFlags.DebugLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	cfg := &Config{
		Flags:       &cfgFlags,
		NetworkName: networkName,
		NetParams:   netParams,
	}
	return cfg, remainingArgs, nil
}

// resolveNetwork picks the single network flag specified and resolves
// it to its chaincfg.Params, grounded on the teacher's
// NetworkFlags.ResolveNetwork (config/network.go): exactly one of the
// mutually exclusive network flags may be set, main is the default.
func resolveNetwork(f *Flags) (string, *chaincfg.Params, error) {
	name := defaultNetwork
	numSet := 0
	if f.TestNet {
		numSet++
		name = "testnet"
	}
	if f.RegressionTest {
		numSet++
		name = "regtest"
	}
	if f.SigNet {
		numSet++
		name = "signet"
	}
	if numSet > 1 {
		return "", nil, errors.New("testnet, regtest and signet cannot be used together; choose only one network")
	}
	params, err := chaincfg.ForNetwork(name)
	if err != nil {
		return "", nil, err
	}
	return name, params, nil
}

// cleanAndExpandPath expands a leading ~ and environment variables in
// path, carried over from the teacher's own helper of the same name.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
