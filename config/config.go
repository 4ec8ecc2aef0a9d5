// Package config loads the daemon configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "GOJOBS_CONFIG"
	EnvSecretKey  = "GOJOBS_SK"
	EnvLogLevel   = "GOJOBS_LOG_LEVEL"
)

type AssetConfig struct {
	ID       string `yaml:"id"`
	Decimals uint8  `yaml:"decimals"`
	// UnitsPerSat is how many base units a Lightning top-up mints per sat.
	UnitsPerSat string `yaml:"units_per_sat"`
}

type StakeConfig struct {
	MinAgent         string    `yaml:"min_agent"`
	MinEmployer      string    `yaml:"min_employer"`
	MinValidator     string    `yaml:"min_validator"`
	FeePct           uint32    `yaml:"fee_pct"`
	BurnPct          uint32    `yaml:"burn_pct"`
	EmployerSlashPct uint32    `yaml:"employer_slash_pct"`
	AGITypes         []AGIType `yaml:"agi_types"`
}

type AGIType struct {
	NFT string `yaml:"nft"`
	Pct uint32 `yaml:"pct"`
}

type JobsConfig struct {
	MaxReward          string        `yaml:"max_reward"`
	MaxDuration        time.Duration `yaml:"max_duration"`
	ValidatorRewardPct uint32        `yaml:"validator_reward_pct"`
	AgentRootNode      string        `yaml:"agent_root_node"`
	AgentMerkleRoot    string        `yaml:"agent_merkle_root"`
	AdditionalAgents   []string      `yaml:"additional_agents"`
	SelectionSeed      string        `yaml:"selection_seed"`
}

type ValidationConfig struct {
	CommitWindow         time.Duration `yaml:"commit_window"`
	RevealWindow         time.Duration `yaml:"reveal_window"`
	ValidatorsPerJob     int           `yaml:"validators_per_job"`
	RevealQuorum         int           `yaml:"reveal_quorum"`
	ClubRootNode         string        `yaml:"club_root_node"`
	MerkleRoot           string        `yaml:"merkle_root"`
	AdditionalValidators []string      `yaml:"additional_validators"`
	// Penalty is slashed from every selected validator that does not
	// reveal. Empty disables penalties.
	Penalty string `yaml:"penalty"`
}

type NostrConfig struct {
	Relays  []string `yaml:"relays"`
	Name    string   `yaml:"name"`
	About   string   `yaml:"about"`
	Picture string   `yaml:"picture"`
}

type LightningConfig struct {
	// Backend is "lnd", "lnbits" or empty to disable top-ups.
	Backend     string `yaml:"backend"`
	Network     string `yaml:"network"`
	Addr        string `yaml:"addr"`
	GRPCPort    string `yaml:"grpc_port"`
	MacaroonHex string `yaml:"-"`
	TLSPath     string `yaml:"tls_path"`
	LNbitsURL   string `yaml:"lnbits_url"`
	LNbitsKey   string `yaml:"-"`
	// InvoiceExpiry bounds how long an unpaid top-up is tracked.
	InvoiceExpiry time.Duration `yaml:"invoice_expiry"`
}

type Config struct {
	Owner       string           `yaml:"owner"`
	Treasury    string           `yaml:"treasury"`
	Asset       AssetConfig      `yaml:"asset"`
	Stake       StakeConfig      `yaml:"stake"`
	Jobs        JobsConfig       `yaml:"jobs"`
	Validation  ValidationConfig `yaml:"validation"`
	Nostr       NostrConfig      `yaml:"nostr"`
	Lightning   LightningConfig  `yaml:"lightning"`
	JournalPath string           `yaml:"journal_path"`
	MetricsAddr string           `yaml:"metrics_addr"`
	LogLevel    string           `yaml:"log_level"`

	// SecretKey is the engine's nostr key. It is only read from the
	// environment.
	SecretKey string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Asset: AssetConfig{
			ID:          "AGIALPHA",
			Decimals:    domain.Decimals,
			UnitsPerSat: "1000000000000",
		},
		Validation: ValidationConfig{
			CommitWindow:     time.Hour,
			RevealWindow:     time.Hour,
			ValidatorsPerJob: 3,
			RevealQuorum:     1,
		},
		Lightning: LightningConfig{
			Network:       "regtest",
			InvoiceExpiry: time.Hour,
		},
		JournalPath: "gojobs.db",
		MetricsAddr: ":9090",
		LogLevel:    "info",
	}
}

// Load reads path over the defaults, applies the environment and validates
// the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.SecretKey, EnvSecretKey)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.Lightning.Addr, "LND_ADDR")
	set(&c.Lightning.GRPCPort, "LND_GRPC_PORT")
	set(&c.Lightning.MacaroonHex, "LND_MAC_HEX")
	set(&c.Lightning.TLSPath, "LND_TLS_PATH")
	set(&c.Lightning.LNbitsURL, "LNBITS_URL")
	set(&c.Lightning.LNbitsKey, "LNBITS_KEY")
}

func (c *Config) Validate() error {
	pcts := map[string]uint32{
		"stake.fee_pct":             c.Stake.FeePct,
		"stake.burn_pct":            c.Stake.BurnPct,
		"stake.employer_slash_pct":  c.Stake.EmployerSlashPct,
		"jobs.validator_reward_pct": c.Jobs.ValidatorRewardPct,
	}
	for name, p := range pcts {
		if p > domain.MaxBasisPoints {
			return fmt.Errorf("config: %s %d is above %d", name, p, domain.MaxBasisPoints)
		}
	}
	if sum := c.Stake.FeePct + c.Stake.BurnPct + c.Jobs.ValidatorRewardPct; sum > domain.MaxBasisPoints {
		return fmt.Errorf("config: fee, burn and validator reward add up to %d", sum)
	}
	for _, t := range c.Stake.AGITypes {
		if t.Pct == 0 || t.Pct > domain.MaxBasisPoints {
			return fmt.Errorf("config: agi type %s pct %d", t.NFT, t.Pct)
		}
	}

	v := c.Validation
	if v.CommitWindow <= 0 || v.RevealWindow <= 0 {
		return fmt.Errorf("config: commit and reveal windows must be positive")
	}
	if v.ValidatorsPerJob <= 0 || v.RevealQuorum < 0 || v.RevealQuorum > v.ValidatorsPerJob {
		return fmt.Errorf("config: %d validators per job with a quorum of %d", v.ValidatorsPerJob, v.RevealQuorum)
	}
	if c.Jobs.MaxDuration < 0 {
		return fmt.Errorf("config: negative max job duration")
	}

	amounts := map[string]string{
		"asset.units_per_sat": c.Asset.UnitsPerSat,
		"stake.min_agent":     c.Stake.MinAgent,
		"stake.min_employer":  c.Stake.MinEmployer,
		"stake.min_validator": c.Stake.MinValidator,
		"jobs.max_reward":     c.Jobs.MaxReward,
		"validation.penalty":  c.Validation.Penalty,
	}
	for name, s := range amounts {
		if _, err := Amount(s); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	hashes := map[string]string{
		"jobs.agent_root_node":      c.Jobs.AgentRootNode,
		"jobs.agent_merkle_root":    c.Jobs.AgentMerkleRoot,
		"jobs.selection_seed":       c.Jobs.SelectionSeed,
		"validation.club_root_node": c.Validation.ClubRootNode,
		"validation.merkle_root":    c.Validation.MerkleRoot,
	}
	for name, s := range hashes {
		if _, err := Hash(s); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}

	switch c.Lightning.Backend {
	case "", "lnd", "lnbits":
	default:
		return fmt.Errorf("config: unknown lightning backend %q", c.Lightning.Backend)
	}
	return nil
}

// Amount parses a base unit amount; empty means zero.
func Amount(s string) (domain.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return domain.ZeroAmount(), nil
	}
	return domain.ParseAmount(s)
}

// Hash parses a hex hash; empty means the zero hash.
func Hash(s string) (merkle.Hash, error) {
	if strings.TrimSpace(s) == "" {
		return merkle.Zero, nil
	}
	return merkle.ParseHash(strings.TrimPrefix(s, "0x"))
}
