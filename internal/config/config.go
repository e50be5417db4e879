// Package config loads the tool's settings from a TOML file, with
// environment overrides for deployment without a file on disk.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type Config struct {
	RPCEndpoint string `toml:"rpc_endpoint"`
	WSEndpoint  string `toml:"ws_endpoint"`
	ProgramID   string `toml:"program_id"`
	KeypairPath string `toml:"keypair_path"`
}

// Default returns settings pointing at devnet with no program configured.
func Default() *Config {
	return &Config{
		RPCEndpoint: rpc.DevNet_RPC,
		WSEndpoint:  rpc.DevNet_WS,
	}
}

// Load reads path if it exists, then applies MULTISIG_* environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("MULTISIG_RPC_ENDPOINT"); v != "" {
		cfg.RPCEndpoint = v
	}
	if v := os.Getenv("MULTISIG_WS_ENDPOINT"); v != "" {
		cfg.WSEndpoint = v
	}
	if v := os.Getenv("MULTISIG_PROGRAM_ID"); v != "" {
		cfg.ProgramID = v
	}
	if v := os.Getenv("MULTISIG_KEYPAIR"); v != "" {
		cfg.KeypairPath = v
	}
	return cfg, nil
}

// Program parses the configured program identity.
func (c *Config) Program() (solana.PublicKey, error) {
	if c.ProgramID == "" {
		return solana.PublicKey{}, fmt.Errorf("no program id configured (set program_id or MULTISIG_PROGRAM_ID)")
	}
	pid, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id %q: %w", c.ProgramID, err)
	}
	return pid, nil
}

// Keypair loads the signing key from the configured solana keygen file.
func (c *Config) Keypair() (solana.PrivateKey, error) {
	if c.KeypairPath == "" {
		return nil, fmt.Errorf("no keypair configured (set keypair_path or MULTISIG_KEYPAIR)")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(c.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", c.KeypairPath, err)
	}
	return key, nil
}
