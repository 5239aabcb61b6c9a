package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/ini.v1"

	"f1stats/internal/shared/types"
)

const envPrefix = "F1STATS_"

// Load 从 ini 文件加载配置，文件不存在时使用默认值，最后应用环境变量覆盖。
func Load(fileName string) (*types.Config, error) {
	cfg := types.DefaultConfig()
	if fileName != "" {
		if _, err := os.Stat(fileName); err == nil {
			if err := LoadIni(cfg, fileName); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "stat config file %q", fileName)
		}
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// LoadIni maps an ini file on top of cfg.
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return eris.Wrapf(err, "load config file %q", fileName)
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return eris.Wrapf(err, "map config file %q", fileName)
	}
	return nil
}

// ApplyEnv overrides the settings that are expected to come from the environment.
func ApplyEnv(cfg *types.Config) {
	overrideFromEnvString(&cfg.StorageConf.Path, envPrefix+"STORAGE_PATH")
	overrideFromEnvBool(&cfg.ProxyConf.Enabled, envPrefix+"USE_PROXY")
	overrideFromEnvString(&cfg.ProxyConf.CatalogDomain, envPrefix+"PROXY_CATALOG_DOMAIN")
	overrideFromEnvString(&cfg.ProxyConf.CatalogProtocol, envPrefix+"PROXY_CATALOG_PROTOCOL")
	overrideFromEnvString(&cfg.LogConf.Level, envPrefix+"LOG_LEVEL")
}

func overrideFromEnvString(target *string, envName string) {
	if envValue := strings.TrimSpace(os.Getenv(envName)); envValue != "" {
		*target = envValue
	}
}

func overrideFromEnvBool(target *bool, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if boolValue, err := strconv.ParseBool(envValue); err == nil {
			*target = boolValue
		}
	}
}
