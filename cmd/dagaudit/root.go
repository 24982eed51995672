package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ipld/go-dagaudit/audit"
	"github.com/ipld/go-dagaudit/internal/config"
)

var log = logging.Logger("dagaudit/cmd")

var rootCmd = &cobra.Command{
	Use:   "dagaudit",
	Short: "Check that DAGs stored as CAR shards in object storage are complete",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFilePath != "" {
				return fmt.Errorf("reading config file: %w", err)
			}
		}
		return logging.SetLogLevelRegex("dagaudit/.*", viper.GetString("log.level"))
	},
	// We handle errors ourselves when they're returned from ExecuteContext.
	SilenceErrors: true,
	SilenceUsage:  true,
}

var cfgFilePath string

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	config.SetDefaults(viper.GetViper())
	initRootFlags()
	cobra.OnInitialize(initConfig)
}

func initRootFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFilePath, "config", "", "Path to the config file")

	bind := func(key, flag string, envs ...string) {
		bindFlag(flags, key, flag, envs...)
	}

	flags.String("log-level", "info", "Log level for dagaudit loggers")
	bind("log.level", "log-level")

	flags.String("store", config.StoreS3, "Object store holding the shards: s3 or fs")
	bind("store.kind", "store")
	flags.String("dir", "", "Directory used as the bucket when --store=fs")
	bind("store.dir", "dir")

	flags.String("bucket", "", "S3 bucket")
	bind("s3.bucket", "bucket", "DAGAUDIT_S3_BUCKET", "ELASTIC_PROVIDER_S3_BUCKET")
	flags.String("region", "", "S3 region")
	bind("s3.region", "region", "DAGAUDIT_S3_REGION", "ELASTIC_PROVIDER_S3_REGION")
	flags.String("access-key-id", "", "S3 access key ID (default credential chain when empty)")
	bind("s3.access_key_id", "access-key-id", "DAGAUDIT_S3_ACCESS_KEY_ID", "ELASTIC_PROVIDER_S3_ACCESS_KEY_ID")
	flags.String("secret-access-key", "", "S3 secret access key")
	bind("s3.secret_access_key", "secret-access-key", "DAGAUDIT_S3_SECRET_ACCESS_KEY", "ELASTIC_PROVIDER_S3_SECRET_ACCESS_KEY")
	flags.String("endpoint", "", "Custom S3 endpoint URL")
	bind("s3.endpoint", "endpoint")
	flags.Duration("request-timeout", viper.GetDuration("s3.request_timeout"), "Limit on a single S3 request, including reading a shard")
	bind("s3.request_timeout", "request-timeout")

	flags.String("sharded-prefix", viper.GetString("layout.sharded_prefix"), "Prefix of per-root shard directories")
	bind("layout.sharded_prefix", "sharded-prefix")
	flags.String("complete-prefix", viper.GetString("layout.complete_prefix"), "Prefix of consolidated per-root CARs")
	bind("layout.complete_prefix", "complete-prefix")

	flags.Int("concurrency", viper.GetInt("ingest.concurrency"), "Number of shards read at once")
	bind("ingest.concurrency", "concurrency")
	flags.Bool("verify-hashes", false, "Check block bytes against their CIDs while reading shards")
	bind("ingest.verify_hashes", "verify-hashes")
	flags.Bool("zero-length-section-as-eof", false, "Treat a zero length CAR section as the end of a shard")
	bind("ingest.zero_length_section_as_eof", "zero-length-section-as-eof")

	flags.String("order", viper.GetString("walk.order"), "DAG walk order: dfs or bfs")
	bind("walk.order", "order")
	flags.Bool("exhaustive", false, "Report every failure instead of stopping at the first")
	bind("walk.exhaustive", "exhaustive")
}

// bindFlag binds a viper key to a flag and, optionally, to environment
// variables checked in order.
func bindFlag(flags *pflag.FlagSet, key, flag string, envs ...string) {
	cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	if len(envs) > 0 {
		cobra.CheckErr(viper.BindEnv(append([]string{key}, envs...)...))
	}
}

func initConfig() {
	// as an example a key is 's3.bucket', checked as DAGAUDIT_S3_BUCKET
	viper.SetEnvPrefix("DAGAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("dagaudit-config")
	viper.SetConfigType("yaml")

	if cfgFilePath == "" {
		viper.AddConfigPath(".")
		if configDir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(configDir, "dagaudit"))
		}
	} else {
		viper.SetConfigFile(cfgFilePath)
	}
}

// ExecuteContext runs the root command. This is called by main.main().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newAuditor builds an Auditor from the loaded configuration.
func newAuditor(ctx context.Context) (*audit.Auditor, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	acfg, err := cfg.Audit()
	if err != nil {
		return nil, err
	}
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Kind, err)
	}
	log.Debugw("configured", "store", cfg.Store.Kind, "bucket", cfg.S3.Bucket, "layout", acfg.Layout, "order", acfg.Order, "exhaustive", acfg.Exhaustive)
	return audit.New(store, acfg), nil
}
