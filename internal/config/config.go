package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	configFileName = "vizlink.conf"
	vizlinkDir     = ".vizlink"
)

type Config struct {
	ServerAddress string
	ServerPort    string
	FeedPort      int

	ArtifactDir      string
	FlushTimer       int
	ReapTimer        int
	ArtifactTTL      int
	MaxArtifactLimit int

	Debug bool
}

// Dir returns the path to the vizlink directory in the user's home directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, vizlinkDir), nil
}

func defaults(dir string) *Config {
	return &Config{
		ServerAddress:    "127.0.0.1",
		ServerPort:       "8080",
		FeedPort:         9443,
		ArtifactDir:      dir,
		FlushTimer:       30,
		ReapTimer:        300,
		ArtifactTTL:      24,
		MaxArtifactLimit: 10,
	}
}

// NewConfig loads vizlink.conf from the vizlink directory. A missing
// file is not an error; every setting falls back to its default.
func NewConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	config := defaults(dir)

	configPath := filepath.Join(dir, configFileName)
	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := parse(file, config); err != nil {
		return nil, err
	}
	return config, nil
}

func parse(file *os.File, config *Config) error {
	scanner := bufio.NewScanner(file)

	var err error
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "server_address":
			config.ServerAddress = value
		case "server_port":
			config.ServerPort = value
		case "feed_port":
			config.FeedPort, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid feed port value: %w", err)
			}
		case "artifact_dir":
			config.ArtifactDir = value
		case "flush_timer":
			config.FlushTimer, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid flush timer value: %w", err)
			}
		case "reap_timer":
			config.ReapTimer, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid reap timer value: %w", err)
			}
		case "artifact_ttl":
			config.ArtifactTTL, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid artifact TTL value: %w", err)
			}
		case "max_artifact_limit":
			config.MaxArtifactLimit, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid artifact limit value: %w", err)
			}
		case "debug":
			config.Debug = value == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}
