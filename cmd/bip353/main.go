// Command `bip353` is the end-user CLI for the bip353 daemon.
//
// bip353 resolves human-readable Bitcoin payment addresses (user@domain,
// optionally prefixed with ₿) into payment instructions via DNSSEC-secured
// DNS TXT records. The CLI talks to a background daemon that holds the
// configured DNS resolver.
//
// Usage:
//
//	bip353 resolve <address>...  - Resolve one or more addresses
//	bip353 parse <address>       - Split an address into user and domain
//	bip353 status                - Show daemon status
//
// Examples:
//
//	bip353 resolve alice@example.com
//	bip353 resolve ₿bob@bitcoin.org carol@example.org
//	bip353 parse ₿alice@example.com
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lc/bip353/internal/buildinfo"
	"github.com/lc/bip353/internal/config"
	"github.com/lc/bip353/pkg/api"
	"github.com/lc/bip353/pkg/bip353"
	"github.com/lc/bip353/pkg/client"
)

func main() {
	cfg, err := config.New().Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	cli := client.New(cfg.Socket.Path)

	root := &cobra.Command{
		Use:   "bip353",
		Short: "BIP-353 payment address resolver CLI",
		Long: `bip353 resolves human-readable Bitcoin payment addresses (user@domain)
into payment instructions by querying DNSSEC-secured DNS TXT records.`,
	}
	// ---- version command ----
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the bip353 CLI and daemon.`,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}
	// ---- resolve command ----
	resolveCmd := &cobra.Command{
		Use:   "resolve <address>...",
		Short: "Resolve addresses to payment instructions",
		Long: `Resolve one or more human-readable Bitcoin addresses to payment
instructions. Multiple addresses are resolved concurrently; each result
shows the payment type, reusability and the raw bitcoin: URI.`,
		Example: "bip353 resolve alice@example.com ₿bob@bitcoin.org",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			// One slot per address so output order matches argument order
			// regardless of which lookup finishes first.
			results := make([]api.ResolveResponse, len(args))
			errs := make([]error, len(args))

			grp, grpCtx := errgroup.WithContext(ctx)
			for i, addr := range args {
				i, addr := i, addr
				grp.Go(func() error {
					results[i], errs[i] = cli.Resolve(grpCtx, addr)
					return nil // per-address failures are reported, not fatal
				})
			}
			if err := grp.Wait(); err != nil {
				return err
			}

			failed := 0
			for i, addr := range args {
				if errs[i] != nil {
					failed++
					color.New(color.FgHiRed, color.Bold).Printf("✗ %s: ", addr)
					fmt.Println(errs[i])
					continue
				}
				printInstruction(addr, results[i])
			}
			if failed == len(args) {
				return fmt.Errorf("no address could be resolved")
			}
			return nil
		},
	}

	// ---- parse command ----
	parseCmd := &cobra.Command{
		Use:   "parse <address>",
		Short: "Split an address into user and domain",
		Long: `Split a human-readable Bitcoin address into its user and domain parts
without performing any DNS resolution. Runs locally; the daemon is not
required.`,
		Example: "bip353 parse ₿alice@example.com",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			user, domain, err := bip353.ParseAddress(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("user: %s\n", user)
			fmt.Printf("domain: %s\n", domain)
			return nil
		},
	}

	// ---- status command ----
	statusCmd := &cobra.Command{
		Use:     "status",
		Short:   "Show daemon status",
		Example: "bip353 status",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			st, err := cli.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("resolutions: %d\n", st.Resolutions)
			fmt.Printf("failures: %d\n", st.Failures)
			fmt.Printf("uptime: %s\n", st.Uptime)
			fmt.Printf("version: %s (%s)\n", st.Version, st.Commit)
			return nil
		},
	}

	root.AddCommand(resolveCmd, parseCmd, statusCmd, versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// printInstruction renders one resolved address: header line, URI, and a
// parameter table when the URI carried any.
func printInstruction(addr string, res api.ResolveResponse) {
	color.New(color.FgGreen, color.Bold).Printf("✓ %s ", addr)
	color.New(color.FgHiYellow, color.Bold).Printf("[%s", res.Type)
	if res.Reusable {
		color.New(color.FgHiYellow, color.Bold).Printf(", reusable")
	}
	color.New(color.FgHiYellow, color.Bold).Println("]")
	color.New(color.FgHiWhite).Printf("  %s\n", res.URI)

	if len(res.Parameters) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Parameter", "Value"})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
	)
	table.SetBorder(false)
	table.SetColumnColor(
		tablewriter.Colors{tablewriter.FgGreenColor},
		tablewriter.Colors{tablewriter.FgHiWhiteColor},
	)
	for k, v := range res.Parameters {
		table.Append([]string{k, v})
	}
	table.Render()
}
