// Command keygen mints caller credentials for the docsift API: a random API
// key with its bcrypt hash for the server config, or a signed JWT when a
// signing secret is supplied.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docsift/docsift-api/internal/config"
	"github.com/docsift/docsift-api/internal/service/auth"
)

func main() {
	ownerFlag := flag.String("owner", "", "owner UUID the credential authenticates (default: newly generated)")
	secretFlag := flag.String("secret", "", "JWT signing secret; when set, a token is minted instead of an API key")
	lifetimeFlag := flag.Duration("lifetime", 24*time.Hour, "token lifetime when minting a JWT")
	flag.Parse()

	ownerID := uuid.New()
	if *ownerFlag != "" {
		parsed, err := uuid.Parse(*ownerFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid owner id %q: %v\n", *ownerFlag, err)
			os.Exit(1)
		}
		ownerID = parsed
	}

	if *secretFlag != "" {
		if err := mintToken(ownerID, *secretFlag, *lifetimeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "failed to mint token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := mintAPIKey(ownerID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to mint api key: %v\n", err)
		os.Exit(1)
	}
}

// mintAPIKey generates a random key, prints it once, and prints the bcrypt
// hash to place in the server's api_keys table. The plaintext key is never
// recoverable from the hash.
func mintAPIKey(ownerID uuid.UUID) error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to read random bytes: %w", err)
	}
	key := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	fmt.Printf("Owner ID: %s\n", ownerID)
	fmt.Printf("API key (give to the caller, shown once): %s\n", key)
	fmt.Printf("Key hash (for server config):\n")
	fmt.Printf("  auth:\n")
	fmt.Printf("    api_keys:\n")
	fmt.Printf("      - owner_id: %s\n", ownerID)
	fmt.Printf("        key_hash: %s\n", string(hash))
	return nil
}

// mintToken signs a JWT for the owner using the same authenticator the
// server runs, so claims and algorithm always match what it will accept.
func mintToken(ownerID uuid.UUID, secret string, lifetime time.Duration) error {
	authenticator, err := auth.New(config.AuthConfig{JWTSecret: secret})
	if err != nil {
		return err
	}

	token, err := authenticator.GenerateToken(ownerID, lifetime)
	if err != nil {
		return err
	}

	fmt.Printf("Owner ID: %s\n", ownerID)
	fmt.Printf("Token (expires in %s): %s\n", lifetime, token)
	return nil
}
