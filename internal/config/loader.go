package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetConfigPath determines the configuration file path based on command-line flags,
// environment variables, and default locations.
// Priority:
// 1. -config command-line flag
// 2. INGESTOR_CONFIG_PATH environment variable
// 3. config.yaml in the current working directory
// 4. config.json in the current working directory
// 5. config.yaml in the executable's directory
// 6. config.json in the executable's directory
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" && fileExists(configFilePathFlag) {
		return configFilePathFlag
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" && fileExists(envPath) {
		return envPath
	}

	cwd, errCwd := os.Getwd()
	exePath, errExe := os.Executable()
	exeDir := ""
	if errExe == nil {
		exeDir = filepath.Dir(exePath)
	}

	defaultFiles := []string{"config.yaml", "config.json"}
	locations := []string{}

	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exeDir != "" && (errCwd != nil || exeDir != cwd) {
		locations = append(locations, exeDir)
	}

	for _, loc := range locations {
		for _, file := range defaultFiles {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error. An empty path means ".env".
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
