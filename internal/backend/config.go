package backend

import (
	"errors"
	"fmt"

	"fincontrol/internal/config"
)

// FromAppConfig converts the application config to the data backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	return fromApp(appConfig, appConfig.DataBackend)
}

// MirrorFromAppConfig builds the config of the worker's mirror backend.
func MirrorFromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	if appConfig.MirrorBackend == "" {
		return Config{}, errors.New("no mirror backend configured")
	}
	return fromApp(appConfig, appConfig.MirrorBackend)
}

func fromApp(appConfig *config.Config, kind string) (Config, error) {
	backendType := BackendType(kind)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", kind)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleCredentialsJSON: appConfig.GoogleCredentialsJSON,
		GoogleCredentialsFile: appConfig.GoogleCredentialsFile,
		GoogleOAuthTokenFile:  appConfig.GoogleOAuthTokenFile,

		DynamoRegion:      appConfig.DynamoRegion,
		DynamoEndpoint:    appConfig.DynamoEndpoint,
		DynamoTablePrefix: appConfig.DynamoTablePrefix,

		MemorySeedFile: appConfig.MemorySeedFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}

	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			return errors.New("either GoogleCredentialsFile or GoogleCredentialsJSON must be provided for sheets backend")
		}

	case DynamoBackend:
		if c.DynamoRegion == "" {
			return errors.New("AWS region is required for dynamodb backend")
		}

	case MemoryBackend:
		// Seed file is optional
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, SheetsBackend, DynamoBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
