// Command bridge-keytool manages relayer secrets: the master key, sealed
// operator keys and API tokens.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/burnmint-bridge/pkg/auth"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/keys"
)

const usageText = `Usage:
  bridge-keytool <command> [flags]

Commands:
  master   prints a new base64 master key
  seal     seals the hex key in $OPERATOR_PRIVATE_KEY with $BRIDGE_MASTER_KEY
  token    issues an API token signed with api.jwt_secret from the config

Examples:
  bridge-keytool master
  OPERATOR_PRIVATE_KEY=0x... BRIDGE_MASTER_KEY=... bridge-keytool seal
  bridge-keytool token -config config.yaml -subject ops -ttl 24h
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usageText)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "master":
		err = master()
	case "seal":
		err = seal()
	case "token":
		err = token(os.Args[2:])
	default:
		fmt.Print(usageText)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func master() error {
	key, err := keys.GenerateMasterKey()
	if err != nil {
		return err
	}
	fmt.Println(keys.MasterKeyToBase64(key))
	return nil
}

func seal() error {
	key, err := keys.LoadOperatorKey(os.Getenv("OPERATOR_PRIVATE_KEY"), "")
	if err != nil {
		return err
	}
	m, err := keys.MasterKeyFromBase64(os.Getenv("BRIDGE_MASTER_KEY"))
	if err != nil {
		return err
	}
	sealed, err := keys.Seal(key, m)
	if err != nil {
		return err
	}
	fmt.Printf("operator: %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex())
	fmt.Printf("operator_private_key: %q\n", sealed)
	return nil
}

func token(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to configuration file")
	subject := fs.String("subject", "operator", "Token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if cfg.API.JWTSecret == "" {
		return fmt.Errorf("api.jwt_secret is not set in %s", *cfgPath)
	}

	signed, err := auth.NewJWTValidator(cfg.API.JWTSecret, cfg.API.JWTIssuer).Issue(*subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	return nil
}
