// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package config loads the audio engine's tunable constants. The engine
// runs perfectly well on its compiled-in defaults (EngineConfig{} zero
// value after Defaults()); this package exists so an embedding
// application can override them from the environment the same way the
// rest of the fleet configures itself.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EngineConfig holds the tunable constants from spec §6 (Configuration).
type EngineConfig struct {
	// DefaultChunkSize is the fixed byte capacity of every Chunk in a Queue.
	DefaultChunkSize int `mapstructure:"chunk_size" validate:"required,gt=0"`
	// RecyclerCap bounds the free-chunk recycler per stream.
	RecyclerCap int `mapstructure:"recycler_cap" validate:"gte=0"`
	// LargePutThresholdBytes is the Put() size at or above which Put builds
	// its chunks outside the stream lock.
	LargePutThresholdBytes int `mapstructure:"large_put_threshold" validate:"required,gt=0"`
	// ZeroCrossings is the number of sinc lobes retained per side of the
	// resampler's filter kernel.
	ZeroCrossings int `mapstructure:"zero_crossings" validate:"required,gt=0"`
	// SamplesPerZeroCrossing is the number of precomputed filter phases
	// between adjacent integer lobes.
	SamplesPerZeroCrossing int `mapstructure:"samples_per_zero_crossing" validate:"required,gt=0"`
}

// Defaults returns the compiled-in configuration matching spec §6/§4.3.
func Defaults() EngineConfig {
	return EngineConfig{
		DefaultChunkSize:       4096,
		RecyclerCap:            4,
		LargePutThresholdBytes: 64 * 1024,
		ZeroCrossings:          10,
		SamplesPerZeroCrossing: 128,
	}
}

// Load reads engine overrides from the environment (prefixed AUDIOSTREAM_)
// and an optional .env-style file named by the AUDIOSTREAM_CONFIG_PATH
// environment variable, falling back to Defaults() for anything unset.
func Load() (EngineConfig, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvPrefix("AUDIOSTREAM")
	v.AutomaticEnv()

	def := Defaults()
	setDefaults(v, def)

	if path := os.Getenv("AUDIOSTREAM_CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return def, err
		}
	}

	var cfg EngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return def, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return def, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, def EngineConfig) {
	v.SetDefault("chunk_size", def.DefaultChunkSize)
	v.SetDefault("recycler_cap", def.RecyclerCap)
	v.SetDefault("large_put_threshold", def.LargePutThresholdBytes)
	v.SetDefault("zero_crossings", def.ZeroCrossings)
	v.SetDefault("samples_per_zero_crossing", def.SamplesPerZeroCrossing)
}
