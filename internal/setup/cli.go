package setup

import (
	"fmt"

	"github.com/raredx-server/internal/config"
)

// CLI handles setup subcommands for the lite binary
type CLI struct {
	cfg *config.LiteConfig
}

// NewCLI creates a setup CLI over the given configuration
func NewCLI(cfg *config.LiteConfig) *CLI {
	return &CLI{cfg: cfg}
}

// Run dispatches a setup subcommand
func (c *CLI) Run(args []string) error {
	if len(args) == 0 {
		return c.showHelp()
	}

	switch args[0] {
	case "init":
		return c.initialize()
	case "status":
		return c.showStatus()
	case "validate":
		return c.validate()
	case "help", "--help", "-h":
		return c.showHelp()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		return c.showHelp()
	}
}

// showHelp displays usage information
func (c *CLI) showHelp() error {
	help := `
Rare Disease Diagnosis Server Setup

Usage:
  raredx-lite setup <command>

Commands:
  init      Create the data directory and database layout
  status    Show current deployment status
  validate  Validate current configuration

Configuration is read from RAREDX_* environment variables; run
"raredx-lite setup status" to see the effective values.
`
	fmt.Println(help)
	return nil
}

func (c *CLI) initialize() error {
	if err := Initialize(c.cfg); err != nil {
		return fmt.Errorf("initializing data directory: %w", err)
	}

	fmt.Printf("Data directory ready: %s\n", c.cfg.DataDir)
	fmt.Printf("Feedback database path: %s\n", c.cfg.FeedbackDBPath())
	fmt.Printf("Export directory: %s\n", c.cfg.ExportDir())
	return nil
}

func (c *CLI) showStatus() error {
	status := GetStatus(c.cfg)

	fmt.Println("Deployment Status")
	fmt.Println("=================")
	fmt.Printf("Data directory:     %s (exists: %v)\n", status.DataDir, status.DataDirExists)
	fmt.Printf("Feedback database:  %s (present: %v)\n", status.DatabasePath, status.DatabaseConfigured)
	fmt.Printf("Export directory:   %s\n", status.ExportDir)
	fmt.Printf("Similarity scoring: %v\n", status.SimilarityEnabled)

	if len(status.Issues) > 0 {
		fmt.Println("\nIssues:")
		for _, issue := range status.Issues {
			fmt.Printf("  - %s\n", issue)
		}
	}

	return nil
}

func (c *CLI) validate() error {
	ok, issues := Validate(c.cfg)

	if len(issues) > 0 {
		fmt.Println("Validation findings:")
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
	}

	if !ok {
		return fmt.Errorf("configuration is not valid")
	}

	fmt.Println("Configuration is valid")
	return nil
}
