package config

import (
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"faultpoint/internal/shared/types"
)

// LoadIni loads the behavior configuration file into cfg. A missing
// file is not an error: the endpoint is fully operable from defaults
// and command-line overrides.
func LoadIni(cfg *types.Config, fileName string) error {
	applyDefaults(cfg)

	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		return nil
	}
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return err
	}
	overrideFromEnvInt(&cfg.ServerConf.ListenPort, "FAULTPOINT_PORT")
	overrideFromEnvStr(&cfg.ServerConf.Directive, "FAULTPOINT_DIRECTIVE")
	return nil
}

func applyDefaults(cfg *types.Config) {
	cfg.ServerConf.ListenPort = types.DefaultListenPort
	cfg.CommonConf.BufferSize = 4096
	cfg.LogConf.Level = "info"
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvStr(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}
