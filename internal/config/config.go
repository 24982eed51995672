// Package config loads the dagaudit command's configuration from viper.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	dagaudit "github.com/ipld/go-dagaudit"
	"github.com/ipld/go-dagaudit/audit"
	"github.com/ipld/go-dagaudit/ingest"
	"github.com/ipld/go-dagaudit/objectstore"
)

const (
	StoreS3 = "s3"
	StoreFS = "fs"
)

type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	S3     S3Config     `mapstructure:"s3"`
	Layout LayoutConfig `mapstructure:"layout"`
	Ingest IngestConfig `mapstructure:"ingest"`
	Walk   WalkConfig   `mapstructure:"walk"`
	Log    LogConfig    `mapstructure:"log"`
}

type StoreConfig struct {
	Kind string `mapstructure:"kind" validate:"oneof=s3 fs"`
	Dir  string `mapstructure:"dir" validate:"required_if=Kind fs"`
}

type S3Config struct {
	Bucket          string        `mapstructure:"bucket" validate:"required"`
	Region          string        `mapstructure:"region" validate:"required"`
	AccessKeyID     string        `mapstructure:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string        `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
	Endpoint        string        `mapstructure:"endpoint" validate:"omitempty,url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"min=0"`
}

type LayoutConfig struct {
	ShardedPrefix  string `mapstructure:"sharded_prefix"`
	CompletePrefix string `mapstructure:"complete_prefix"`
}

type IngestConfig struct {
	Concurrency            int  `mapstructure:"concurrency" validate:"min=1"`
	VerifyHashes           bool `mapstructure:"verify_hashes"`
	ZeroLengthSectionAsEOF bool `mapstructure:"zero_length_section_as_eof"`
}

type WalkConfig struct {
	Order      string `mapstructure:"order" validate:"oneof=dfs bfs"`
	Exhaustive bool   `mapstructure:"exhaustive"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error dpanic panic fatal"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.kind", StoreS3)
	v.SetDefault("s3.request_timeout", 30*time.Minute)
	v.SetDefault("layout.sharded_prefix", dagaudit.DefaultLayout.ShardedPrefix)
	v.SetDefault("layout.complete_prefix", dagaudit.DefaultLayout.CompletePrefix)
	v.SetDefault("ingest.concurrency", 1)
	v.SetDefault("walk.order", string(dagaudit.WalkOrderDFS))
	v.SetDefault("log.level", "info")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c.Store); err != nil {
		return err
	}
	if c.Store.Kind == StoreS3 {
		if err := validate.Struct(c.S3); err != nil {
			return err
		}
	}
	if err := validate.Struct(c.Ingest); err != nil {
		return err
	}
	if err := validate.Struct(c.Walk); err != nil {
		return err
	}
	return validate.Struct(c.Log)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("unable to decode config, %w", err)
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("invalid config, %w", err)
	}
	return out, nil
}

// Audit returns the audit configuration.
func (c Config) Audit() (audit.Config, error) {
	order, err := dagaudit.ParseWalkOrder(c.Walk.Order)
	if err != nil {
		return audit.Config{}, err
	}
	return audit.Config{
		Layout: dagaudit.Layout{
			ShardedPrefix:  c.Layout.ShardedPrefix,
			CompletePrefix: c.Layout.CompletePrefix,
		},
		Ingest: ingest.Config{
			Concurrency:            c.Ingest.Concurrency,
			VerifyHashes:           c.Ingest.VerifyHashes,
			ZeroLengthSectionAsEOF: c.Ingest.ZeroLengthSectionAsEOF,
		},
		Order:      order,
		Exhaustive: c.Walk.Exhaustive,
	}, nil
}

// OpenStore returns the object store the configuration names.
func (c Config) OpenStore(ctx context.Context) (objectstore.Store, error) {
	switch c.Store.Kind {
	case StoreFS:
		return objectstore.NewFSStore(c.Store.Dir), nil
	case StoreS3:
		return objectstore.NewS3Store(ctx, objectstore.S3Config{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			RequestTimeout:  c.S3.RequestTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
}
