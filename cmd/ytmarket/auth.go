package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ytmarket/pkg/auth"
	"ytmarket/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored YouTube API keys",
	Long: `Manage the pool of YouTube Data API keys securely.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only, YTMARKET_API_KEYS)

Stored keys form the rotation pool: when one key's daily quota runs out
during a scan, the next stored key takes over.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [label]",
	Short: "Store a YouTube API key securely",
	Long: `Store a YouTube Data API key under a label.

To create an API key:
1. Open the Google Cloud Console
2. Create a project (or pick an existing one)
3. Enable the "YouTube Data API v3"
4. Create an API key under Credentials

Each key has a daily quota; storing several keys lets scans rotate
through them.`,
	Example: `  # Interactive
  ytmarket auth login

  # With a label
  ytmarket auth login backup-key`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:     "logout [label]",
	Aliases: []string{"remove"},
	Short:   "Remove a stored API key",
	Long: `Remove a stored API key.

If no label is provided, you will be shown a list of stored keys to
choose from. You can also remove all keys at once.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored API keys",
	Long:  `List all stored API keys with their values masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize key manager", err.Error())
		os.Exit(1)
	}

	var label string
	if len(args) > 0 {
		label = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if label == "" {
		fmt.Print("Key label (e.g. primary): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read label", err.Error())
			os.Exit(1)
		}
		label = strings.TrimSpace(input)
	}

	if label == "" {
		ui.PrintError("A label is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(label); existing != nil {
		fmt.Printf("A key labeled '%s' already exists. Replace it? (y/N): ", label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter the API key (it will be hidden as you type):")

	var apiKey string
	for {
		fmt.Print("API key: ")
		apiKey, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read API key", err.Error())
			os.Exit(1)
		}

		// Google API keys are 39 characters starting with AIza
		if len(apiKey) < 30 || !strings.HasPrefix(apiKey, "AIza") {
			fmt.Println("\nThat doesn't look like a YouTube Data API key.")
			fmt.Println("It should be ~39 characters starting with 'AIza'.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	key := &auth.APIKey{
		Label:        label,
		Key:          apiKey,
		LastModified: time.Now(),
	}

	fmt.Println("\nStoring key securely...")
	if err := manager.Store(key); err != nil {
		ui.PrintError("Failed to store API key", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Key saved: " + label)

	stored, _ := manager.List()
	fmt.Printf("\nKeys in rotation pool: %d\n", len(stored))
	fmt.Println("\nRun a scan:")
	fmt.Println("  ytmarket scan \"your keyword\"")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize key manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			ui.PrintError("Failed to remove key", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Key removed: " + args[0])
		return
	}

	keys, err := manager.List()
	if err != nil || len(keys) == 0 {
		ui.PrintError("No stored keys found")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(keys) == 1 {
		key := keys[0]
		fmt.Printf("Remove key '%s'? (y/N): ", key.Label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}

		if err := manager.Delete(key.Label); err != nil {
			ui.PrintError("Failed to remove key", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Key removed: " + key.Label)
		return
	}

	fmt.Println("Select key to remove:")
	for i, key := range keys {
		fmt.Printf("  %d. %s\n", i+1, key.Label)
	}
	fmt.Printf("  %d. Remove all keys\n", len(keys)+1)
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return
	case choice == len(keys)+1:
		fmt.Print("Remove ALL keys? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return
		}
		if err := manager.DeleteAll(); err != nil {
			ui.PrintError("Failed to remove all keys", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("All keys removed")
	case choice > 0 && choice <= len(keys):
		key := keys[choice-1]
		if err := manager.Delete(key.Label); err != nil {
			ui.PrintError("Failed to remove key", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Key removed: " + key.Label)
	default:
		ui.PrintError("Invalid choice")
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize key manager", err.Error())
		os.Exit(1)
	}

	keys, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list keys", err.Error())
		os.Exit(1)
	}

	if len(keys) == 0 {
		ui.PrintInfo("No stored keys", "Use 'ytmarket auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored API Keys")
	fmt.Println()

	for i, key := range keys {
		masked := key.Masked()
		fmt.Printf("%d. Label: %s\n", i+1, masked.Label)
		fmt.Printf("   Key: %s\n", masked.Key)
		fmt.Printf("   Last Modified: %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
