/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Prefix of every environment variable overriding the configuration
const EnvPrefix = "STUDYBUD_"

type Config struct {
	FolderPath        string `json:"folder-path" yaml:"folder-path"`
	DBDriver          string `json:"db-driver" yaml:"db-driver"`
	DBName            string `json:"db-name" yaml:"db-name"`
	DatabaseURL       string `json:"database-url" yaml:"database-url"`
	HTTPServerPort    uint16 `json:"http-server-port" yaml:"http-server-port"`
	TemplateDirectory string `json:"template-directory" yaml:"template-directory"`
	ReadTimeout       int64  `json:"read-timeout" yaml:"read-timeout"`
	WriteTimeout      int64  `json:"write-timeout" yaml:"write-timeout"`
	SecretKey         string `json:"secret-key" yaml:"secret-key"`
	SecureCookies     bool   `json:"secure-cookies" yaml:"secure-cookies"`
	EnableLogging     bool   `json:"enable-logging" yaml:"enable-logging"`
	LogLevel          string `json:"log-level" yaml:"log-level"`
	LogFormat         string `json:"log-format" yaml:"log-format"`
	MetricsEnabled    bool   `json:"metrics-enabled" yaml:"metrics-enabled"`
	GRPCHealthPort    uint16 `json:"grpc-health-port" yaml:"grpc-health-port"`
	BcryptCost        int    `json:"bcrypt-cost" yaml:"bcrypt-cost"`
}

// Values used for whatever the configuration file leaves out
func DefaultConfig() *Config {
	return &Config{
		FolderPath:     ".",
		DBDriver:       "sqlite",
		DBName:         "studybud.db",
		HTTPServerPort: 8000,
		ReadTimeout:    10,
		WriteTimeout:   10,
		EnableLogging:  true,
		LogLevel:       "info",
		LogFormat:      "text",
		MetricsEnabled: true,
		BcryptCost:     10,
	}
}

// Loads the configuration at location.
// A directory is read as <dir>/.cfg (JSON), a file is decoded as YAML when it ends in .yaml or .yml and as JSON otherwise.
func LoadConfig(location string) (*Config, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		location = filepath.Join(location, ".cfg")
	}

	file, err := os.OpenFile(location, os.O_RDONLY, 0755)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(payload, config)
	default:
		err = json.Unmarshal(payload, config)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}

	return config, nil
}

// Loads <folder>/.env, if present, into the process environment without replacing what is already set.
func LoadDotEnv(folder string) error {
	err := godotenv.Load(filepath.Join(folder, ".env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Overrides fields with the STUDYBUD_* variables found through lookup (use os.LookupEnv for the real environment).
func (c *Config) ApplyEnvOverrides(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	port := func(key string, dst *uint16) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = uint16(n)
		return nil
	}
	integer := func(key string, dst *int64) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("FOLDER_PATH", &c.FolderPath)
	str("DB_DRIVER", &c.DBDriver)
	str("DB_NAME", &c.DBName)
	str("DATABASE_URL", &c.DatabaseURL)
	str("TEMPLATE_DIRECTORY", &c.TemplateDirectory)
	str("SECRET_KEY", &c.SecretKey)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	var cost int64 = int64(c.BcryptCost)
	errs := []error{
		port("HTTP_SERVER_PORT", &c.HTTPServerPort),
		port("GRPC_HEALTH_PORT", &c.GRPCHealthPort),
		integer("READ_TIMEOUT", &c.ReadTimeout),
		integer("WRITE_TIMEOUT", &c.WriteTimeout),
		integer("BCRYPT_COST", &cost),
		boolean("SECURE_COOKIES", &c.SecureCookies),
		boolean("ENABLE_LOGGING", &c.EnableLogging),
		boolean("METRICS_ENABLED", &c.MetricsEnabled),
	}
	c.BcryptCost = int(cost)

	return errors.Join(errs...)
}

// Reports every problem of the configuration at once
func (c *Config) Validate() error {
	var errs []error

	if len(c.SecretKey) < 32 {
		errs = append(errs, errors.New("secret-key must be at least 32 bytes"))
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBName == "" {
			errs = append(errs, errors.New("db-name is required with the sqlite driver"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database-url is required with the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db-driver %q", c.DBDriver))
	}
	if c.HTTPServerPort == 0 {
		errs = append(errs, errors.New("http-server-port must be set"))
	}
	if c.GRPCHealthPort != 0 && c.GRPCHealthPort == c.HTTPServerPort {
		errs = append(errs, errors.New("grpc-health-port must differ from http-server-port"))
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		errs = append(errs, errors.New("timeouts can not be negative"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt-cost %d is out of range [4, 31]", c.BcryptCost))
	}

	return errors.Join(errs...)
}

// Path of the SQLite database file
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.DBName) {
		return c.DBName
	}
	return filepath.Join(c.FolderPath, c.DBName)
}

// Maps every page of fsys (top-level *.html) to the files needed to parse it: all layouts/*.html, then the page itself.
func RetrieveWebTemplates(fsys fs.FS) (map[string][]string, error) {

	mapping := make(map[string][]string)

	layoutFiles, err := fs.Glob(fsys, path.Join("layouts", "*.html"))
	if err != nil {
		return nil, err
	}

	pageFiles, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pageFiles {
		files := append([]string{}, layoutFiles...)
		files = append(files, page)
		mapping[path.Base(page)] = files
	}

	return mapping, nil
}
