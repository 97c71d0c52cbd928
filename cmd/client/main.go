// cmd/client is the CLI entry-point built with Cobra.
//
// Usage:
//
//	bankcli deposit 20 100.0     --server http://localhost:8080
//	bankcli withdraw 20 50.0     --server http://localhost:8080
//	bankcli interest 20          --server http://localhost:8080
//	bankcli check 20             --server http://localhost:8080
//	bankcli dump                 --server http://localhost:8080
//	bankcli repl                 --server http://localhost:8080
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"redblue-bank/internal/client"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "bankcli",
		Short: "CLI client for the RedBlue bank demonstrator",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"http://localhost:8080", "replica server address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")

	root.AddCommand(depositCmd(), withdrawCmd(), interestCmd(), checkCmd(), dumpCmd(), replCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ─── deposit ──────────────────────────────────────────────────────────────────

func depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <aid> <amount>",
		Short: "Credit an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, amount, err := parseAIDAmount(args)
			if err != nil {
				return err
			}
			resp, err := client.New(serverAddr, timeout).Deposit(context.Background(), aid, amount)
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
}

// ─── withdraw ─────────────────────────────────────────────────────────────────

func withdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <aid> <amount>",
		Short: "Debit an account, if the balance covers it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, amount, err := parseAIDAmount(args)
			if err != nil {
				return err
			}
			resp, err := client.New(serverAddr, timeout).Withdraw(context.Background(), aid, amount)
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
}

// ─── interest ─────────────────────────────────────────────────────────────────

func interestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interest <aid>",
		Short: "Apply interest to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad aid %q: %w", args[0], err)
			}
			resp, err := client.New(serverAddr, timeout).Interest(context.Background(), aid)
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
}

// ─── check ────────────────────────────────────────────────────────────────────

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <aid>",
		Short: "Read an account's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad aid %q: %w", args[0], err)
			}
			resp, err := client.New(serverAddr, timeout).Check(context.Background(), aid)
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
}

// ─── dump ─────────────────────────────────────────────────────────────────────

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the replica's diagnostic state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := client.New(serverAddr, timeout).Dump(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

// ─── repl ─────────────────────────────────────────────────────────────────────

// replCmd reads one command per line from stdin until EOF or a blank
// line, in the same "<cmd> <aid> [amount]" shape the original demo's
// interactive test client used.
func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read deposit/withdraw/interest/check commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			ctx := context.Background()
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					return nil
				}
				if err := runReplLine(ctx, c, line); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
			return scanner.Err()
		},
	}
}

func runReplLine(ctx context.Context, c *client.Client, line string) error {
	parts := strings.Fields(line)
	switch len(parts) {
	case 3:
		aid, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad aid %q: %w", parts[1], err)
		}
		amount, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return fmt.Errorf("bad amount %q: %w", parts[2], err)
		}
		var resp any
		var rerr error
		switch parts[0] {
		case "deposit":
			resp, rerr = c.Deposit(ctx, aid, amount)
		case "withdraw":
			resp, rerr = c.Withdraw(ctx, aid, amount)
		default:
			return fmt.Errorf("unknown 3-arg command %q", parts[0])
		}
		if rerr != nil {
			return rerr
		}
		prettyPrint(resp)

	case 2:
		aid, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad aid %q: %w", parts[1], err)
		}
		var resp any
		var rerr error
		switch parts[0] {
		case "interest":
			resp, rerr = c.Interest(ctx, aid)
		case "check":
			resp, rerr = c.Check(ctx, aid)
		default:
			return fmt.Errorf("unknown 2-arg command %q", parts[0])
		}
		if rerr != nil {
			return rerr
		}
		prettyPrint(resp)

	default:
		return fmt.Errorf("retry: expected \"<cmd> <aid> [amount]\"")
	}
	return nil
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func parseAIDAmount(args []string) (int, float64, error) {
	aid, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad aid %q: %w", args[0], err)
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad amount %q: %w", args[1], err)
	}
	return aid, amount, nil
}

func prettyPrint(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
