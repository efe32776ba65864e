// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config is the operational configuration of the issuance service: where to
// reach the cluster, which program deployment to drive, and the collection
// identity baked into every mint.
type Config struct {
	RPCList        []string `mapstructure:"rpc_list"`
	ProgramID      string   `mapstructure:"program_id"`
	MasterMint     string   `mapstructure:"master_mint"`
	WalletFile     string   `mapstructure:"wallet_file"`
	CollectionName string   `mapstructure:"collection_name"`
	Symbol         string   `mapstructure:"symbol"`
	MetadataURI    string   `mapstructure:"metadata_uri"`
	RoyaltyBps     int      `mapstructure:"royalty_bps"`
	Retries        int      `mapstructure:"retries"`
	DebugLogging   bool     `mapstructure:"debug_logging"`
	LogFile        string   `mapstructure:"log_file"`
}

const (
	DefaultCollectionName = "AMMo Founder"
	DefaultSymbol         = "FAMMo"
	DefaultRoyaltyBps     = 500
	DefaultRetries        = 3
	DefaultLogFile        = "founders-mint.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"collection_name": DefaultCollectionName,
		"symbol":          DefaultSymbol,
		"royalty_bps":     DefaultRoyaltyBps,
		"retries":         DefaultRetries,
		"log_file":        DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.ProgramID == "" {
		return errors.New("missing program_id in configuration")
	}
	if cfg.MasterMint == "" {
		return errors.New("missing master_mint in configuration")
	}
	if cfg.RoyaltyBps < 0 || cfg.RoyaltyBps > 10_000 {
		return errors.New("invalid royalty_bps")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("FOUNDERS_MINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envWallet := v.GetString("WALLET_FILE"); envWallet != "" {
		cfg.WalletFile = envWallet
	}

	if envRPCList := v.GetString("RPC_LIST"); envRPCList != "" {
		var cleanRPCs []string
		for _, rpc := range strings.Split(envRPCList, ",") {
			if clean := strings.TrimSpace(rpc); clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
}
