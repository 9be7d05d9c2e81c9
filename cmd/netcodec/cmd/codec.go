/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [codec]",
	Short: "Show codec wire layouts",
	Long: `List every registered codec, or show the field layout of one codec.

Examples:
  netcodec inspect
  netcodec inspect set_long
  netcodec inspect transform --output yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			if format == formatTable {
				return writeCodecTable(out, e.registry.Codecs())
			}
			layouts := make(map[string][]codec.FieldLayout, e.registry.Len())
			for _, c := range e.registry.Codecs() {
				layouts[c.Name()] = c.Fields()
			}
			return writeValue(out, format, layouts)
		}

		c, err := e.registry.ResolveName(args[0])
		if err != nil {
			return err
		}
		if format == formatTable {
			return writeLayoutTable(out, c)
		}
		return writeValue(out, format, c.Fields())
	},
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <codec> [json|-]",
	Short: "Encode a JSON record to hex",
	Long: `Encode a record given as JSON with the named codec and print the bytes as hex.
The record is read from standard input when it is omitted or "-".

Examples:
  netcodec encode set_long '{"Object":{"ID":300,"Owner":1,"Member":5},"Field":1,"Value":-100}'
  echo '{"Room":7,"Member":2}' | netcodec encode attach_to_room -`,
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

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
		return nil
	},
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <codec> [hex|-]",
	Short: "Decode a hex payload to JSON or YAML",
	Long: `Decode a hex encoded payload with the named codec and print the record.
The payload is read from standard input when it is omitted or "-".

Examples:
  netcodec decode set_long ac020100050001c701
  netcodec decode header 010a02 --output yaml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")

		input, err := argOrStdin(cmd, args[1:])
		if err != nil {
			return err
		}
		payload, err := hex.DecodeString(strings.TrimSpace(string(input)))
		if err != nil {
			return fmt.Errorf("invalid hex payload: %w", err)
		}

		value, trailing, err := decodeRecord(e.registry, args[0], payload)
		if err != nil {
			return err
		}
		if trailing > 0 {
			cmd.PrintErrf("warning: %d trailing bytes after %s\n", trailing, args[0])
		}
		return writeValue(cmd.OutOrStdout(), format, value)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)

	inspectCmd.Flags().StringP("output", "o", formatTable, "Output format (table, json, yaml)")
	decodeCmd.Flags().StringP("output", "o", formatJSON, "Output format (json, yaml)")
}

// argOrStdin returns the single argument, or standard input when there is
// none or it is "-"
func argOrStdin(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read standard input: %w", err)
	}
	return data, nil
}

// encodeRecord decodes input as a JSON record of the named codec and encodes it
func encodeRecord(reg *codec.Registry, name string, input []byte) ([]byte, error) {
	c, err := reg.ResolveName(name)
	if err != nil {
		return nil, err
	}

	value := c.New()
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return nil, fmt.Errorf("invalid JSON record for %s: %w", name, err)
	}

	buf := wire.NewBuffer(64)
	if err := c.EncodeValue(value, buf); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// decodeRecord decodes one record of the named codec from payload and reports
// how many bytes were left over
func decodeRecord(reg *codec.Registry, name string, payload []byte) (any, int, error) {
	c, err := reg.ResolveName(name)
	if err != nil {
		return nil, 0, err
	}

	buf := wire.FromBytes(payload)
	value, err := c.DecodeValue(buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return value, buf.Remaining(), nil
}
