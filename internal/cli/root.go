// Package cli implements the achievementctl command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/records"
	"github.com/Lllllllleong/achievementflow/internal/services"
	"github.com/Lllllllleong/achievementflow/internal/view"
)

// Config keys. Each is also read from the environment variable the Cloud
// Function uses for the same setting.
const (
	cfgProjectID     = "project_id"
	cfgBucket        = "bucket"
	cfgCollection    = "collection"
	cfgAssetBasePath = "asset_base_path"
	cfgCDNDomain     = "cdn_domain"
	cfgPublicBaseURL = "public_base_url"
	cfgEmulatorHost  = "storage_emulator_host"
)

var envBindings = map[string]string{
	cfgProjectID:     "PROJECT_ID",
	cfgBucket:        "ACHIEVEMENTS_BUCKET",
	cfgCollection:    "FIRESTORE_COLLECTION",
	cfgAssetBasePath: "ASSET_BASE_PATH",
	cfgCDNDomain:     "ASSET_CDN_DOMAIN",
	cfgPublicBaseURL: "OBJECT_STORAGE_PUBLIC_BASE_URL",
	cfgEmulatorHost:  "STORAGE_EMULATOR_HOST",
}

// Pipeline is a view.Pipeline that owns store connections.
type Pipeline interface {
	view.Pipeline
	Close() error
}

// PipelineFactory builds the pipeline a command runs against.
type PipelineFactory func(ctx context.Context, cfg services.RecorderConfig) (Pipeline, error)

func defaultFactory(ctx context.Context, cfg services.RecorderConfig) (Pipeline, error) {
	recorder, err := services.NewRecorderFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return recorder, nil
}

type app struct {
	v          *viper.Viper
	configFile string
	factory    PipelineFactory
}

// Option customizes the root command.
type Option func(*app)

// WithPipelineFactory replaces the GCP-backed pipeline.
func WithPipelineFactory(f PipelineFactory) Option {
	return func(a *app) { a.factory = f }
}

// NewRootCmd creates the top-level "achievementctl" command.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{v: viper.New(), factory: defaultFactory}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "achievementctl",
		Short: "Record and browse student achievements",
		Long: "achievementctl uploads achievement certificates to Cloud Storage, records\n" +
			"their metadata in Firestore, and lists or searches what has been recorded.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: ./achievementctl.yaml or ~/.config/achievementflow/achievementctl.yaml)")
	pf.String("project", "", "GCP project ID")
	pf.String("bucket", "", "Cloud Storage bucket for achievement files")
	pf.String("collection", "", "Firestore collection (default: achievements)")
	_ = a.v.BindPFlag(cfgProjectID, pf.Lookup("project"))
	_ = a.v.BindPFlag(cfgBucket, pf.Lookup("bucket"))
	_ = a.v.BindPFlag(cfgCollection, pf.Lookup("collection"))

	root.AddCommand(newSubmitCmd(a))
	root.AddCommand(newListCmd(a))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) loadConfig() error {
	a.v.SetDefault(cfgCollection, records.DefaultCollection)
	a.v.SetDefault(cfgAssetBasePath, assets.DefaultBasePath)
	for key, env := range envBindings {
		if err := a.v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.SetConfigName("achievementctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home + "/.config/achievementflow")
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) recorderConfig() services.RecorderConfig {
	return services.RecorderConfig{
		ProjectID:      strings.TrimSpace(a.v.GetString(cfgProjectID)),
		Bucket:         strings.TrimSpace(a.v.GetString(cfgBucket)),
		CollectionName: a.v.GetString(cfgCollection),
		AssetBasePath:  a.v.GetString(cfgAssetBasePath),
		CDNDomain:      a.v.GetString(cfgCDNDomain),
		PublicBaseURL:  a.v.GetString(cfgPublicBaseURL),
		EmulatorHost:   a.v.GetString(cfgEmulatorHost),
		MaxUploadBytes: services.DefaultMaxUploadBytes,
	}
}

// board connects to the stores and performs the initial fetch. A failed
// fetch is reported on stderr and leaves the board empty.
func (a *app) board(cmd *cobra.Command) (*view.Board, func(), error) {
	p, err := a.factory(cmd.Context(), a.recorderConfig())
	if err != nil {
		return nil, nil, err
	}
	b := view.NewBoard(p)
	if err := b.Mount(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; showing an empty list\n", err)
	}
	return b, func() { _ = p.Close() }, nil
}
