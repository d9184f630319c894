package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const defaultEnvFile = ".env"

var (
	envFlag  string
	loadOnce sync.Once
	loadErr  error
)

// validator is implemented by config structs that check their own invariants
// after env processing.
type validator interface {
	Validate() error
}

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New exports the env file once per process (-env flag, else ./.env when
// present) and then fills T from variables under prefix.
func New[T any](prefix string) (*T, error) {
	loadOnce.Do(func() {
		loadErr = loadEnvFiles()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return process[T](prefix)
}

func process[T any](prefix string) (*T, error) {
	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	if v, ok := any(&conf).(validator); ok {
		if err := v.Validate(); err != nil {
			name := strings.ToUpper(strings.TrimSpace(prefix))
			if name == "" {
				name = "APP"
			}
			return nil, fmt.Errorf("invalid %s config: %w", name, err)
		}
	}

	return &conf, nil
}

func loadEnvFiles() error {
	if flag.Lookup("env") == nil {
		flag.StringVar(&envFlag, "env", "", "path to .env file")
	}
	if !flag.Parsed() {
		flag.Parse()
	}

	if path := strings.TrimSpace(envFlag); path != "" {
		if err := exportEnvFile(path, false); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := exportEnvFile(defaultEnvFile, true); err != nil {
		return fmt.Errorf("load default env file: %w", err)
	}
	return nil
}

// exportEnvFile copies every key of the file into the process environment.
// Variables already set keep their value. With optional set, a missing
// file is not an error.
func exportEnvFile(path string, optional bool) error {
	info, err := os.Stat(path)
	switch {
	case optional && errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case info.IsDir():
		if optional {
			return nil
		}
		return fmt.Errorf("%s is a directory", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}
