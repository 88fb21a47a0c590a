// feira-cli stages a shopping trip locally while you shop and commits it
// to the server in one request at checkout. Staging needs no network and
// survives restarts; only login, register and checkout talk to the API.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"feira/internal/cart"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "feira",
	Short: "feira — stage grocery trips offline, commit them at checkout",
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(checkoutCmd)
}

// dataDir resolves the local state directory (cart draft + token).
func dataDir() (string, error) {
	if dir := os.Getenv("FEIRA_CART_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".feira"), nil
}

func openCart() (*cart.Cart, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	store, err := cart.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return cart.Open(store)
}
