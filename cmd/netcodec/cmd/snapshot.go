/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/cheetah-game-platform/realtime/pkg/snapshot"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored record snapshots",
	Long: `Store, read, list and delete encoded record snapshots in the configured
snapshot directory.`,
}

var snapshotPutCmd = &cobra.Command{
	Use:   "put <codec> [json|-]",
	Short: "Encode a JSON record and store it",
	Long: `Encode a JSON record with the named codec and store the bytes as a snapshot.

Example:
  netcodec snapshot put attach_to_room '{"Room":7,"Member":2}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}

		input, err := argOrStdin(cmd, args[1:])
		if err != nil {
			return err
		}
		data, err := encodeRecord(e.registry, args[0], input)
		if err != nil {
			return err
		}

		return withSnapshots(cmd, func(store *snapshot.Store) error {
			id, err := store.Put(args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var snapshotGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored snapshot",
	Long: `Print a snapshot decoded with the codec it was stored under. Snapshots of
codecs that are no longer registered are printed as hex.

Example:
  netcodec snapshot get 2Xk1w2QzW8Yv3o0cEJ7dYQ2a1bC --output yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")

		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid snapshot id: %w", err)
		}

		return withSnapshots(cmd, func(store *snapshot.Store) error {
			snap, err := store.Get(id)
			if err != nil {
				return err
			}

			c, err := e.registry.ResolveName(snap.Name)
			if err != nil {
				cmd.PrintErrf("codec %s is not registered, printing raw bytes\n", snap.Name)
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(snap.Payload))
				return nil
			}
			value, err := c.DecodeValue(wire.FromBytes(snap.Payload))
			if err != nil {
				return fmt.Errorf("failed to decode snapshot: %w", err)
			}
			return writeValue(cmd.OutOrStdout(), format, value)
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd, func(store *snapshot.Store) error {
			ids, err := store.List()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODEC\tSIZE\tCREATED")
			for _, id := range ids {
				snap, err := store.Get(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", snap.ID, snap.Name, len(snap.Payload), snap.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		})
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid snapshot id: %w", err)
		}

		return withSnapshots(cmd, func(store *snapshot.Store) error {
			if err := store.Delete(id); err != nil {
				return err
			}
			cmd.Printf("Deleted snapshot %s\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotPutCmd)
	snapshotCmd.AddCommand(snapshotGetCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)

	snapshotGetCmd.Flags().StringP("output", "o", formatJSON, "Output format (json, yaml)")
}

// withSnapshots opens the configured snapshot store for the duration of fn
func withSnapshots(cmd *cobra.Command, fn func(store *snapshot.Store) error) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}

	store, err := snapshot.Open(e.config.Snapshots.Dir, snapshot.WithSync(e.config.Snapshots.Sync))
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	return fn(store)
}
