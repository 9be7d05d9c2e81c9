/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cheetah-game-platform/realtime/pkg/capture"
	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Read capture logs",
	Long:  `Read capture logs written by "netcodec serve --capture".`,
}

// captureDumpCmd represents the capture dump command
var captureDumpCmd = &cobra.Command{
	Use:   "dump [file...]",
	Short: "Print the frames of capture logs",
	Long: `Print every frame of the given capture logs. Without arguments, every log in
the configured capture directory is read. With --decode, payloads of registered
codecs are decoded.

Examples:
  netcodec capture dump
  netcodec capture dump ./data/captures/2Xk1w2....ncap --decode`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		decode, _ := cmd.Flags().GetBool("decode")

		paths := args
		if len(paths) == 0 {
			paths, err = filepath.Glob(filepath.Join(e.config.Capture.Dir, "*"+capture.FileExtension))
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				cmd.Printf("No capture logs in %s\n", e.config.Capture.Dir)
				return nil
			}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tOFFSET\tTIME\tCODEC\tSIZE\tPAYLOAD")
		err = capture.Dump(cmd.Context(), paths, func(path string, frame *capture.Frame) error {
			return writeFrame(tw, e.registry, filepath.Base(path), frame, decode)
		})
		if flushErr := tw.Flush(); err == nil {
			err = flushErr
		}
		return err
	},
}

// captureIndexCmd represents the capture index command
var captureIndexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Summarize a capture log by codec",
	Long: `Index a capture log by codec name and print how many frames each codec
recorded. With --codec, print only the frames of that codec.

Examples:
  netcodec capture index ./data/captures/2Xk1w2....ncap
  netcodec capture index ./data/captures/2Xk1w2....ncap --codec set_long --decode`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("codec")
		decode, _ := cmd.Flags().GetBool("decode")

		reader, err := capture.NewReader(capture.ReaderConfig{FilePath: args[0]})
		if err != nil {
			return err
		}
		defer reader.Close()

		idx := capture.NewIndex()
		if err := idx.BuildFromLog(reader); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if name == "" {
			fmt.Fprintln(tw, "CODEC\tFRAMES\tBYTES")
			for _, n := range idx.Names() {
				entries := idx.Entries(n)
				total := 0
				for _, entry := range entries {
					total += entry.Size
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\n", n, len(entries), total)
			}
			fmt.Fprintf(tw, "total\t%d\t\n", idx.Len())
			return tw.Flush()
		}

		fmt.Fprintln(tw, "FILE\tOFFSET\tTIME\tCODEC\tSIZE\tPAYLOAD")
		for _, entry := range idx.Entries(name) {
			frame, err := reader.ReadAt(entry.Offset)
			if err != nil {
				return err
			}
			if err := writeFrame(tw, e.registry, filepath.Base(args[0]), frame, decode); err != nil {
				return err
			}
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.AddCommand(captureDumpCmd)
	captureCmd.AddCommand(captureIndexCmd)
	captureDumpCmd.Flags().Bool("decode", false, "Decode payloads of registered codecs")
	captureIndexCmd.Flags().String("codec", "", "Print the frames of this codec")
	captureIndexCmd.Flags().Bool("decode", false, "Decode payloads of registered codecs")
}

// writeFrame prints one frame; undecodable payloads fall back to hex
func writeFrame(w io.Writer, reg *codec.Registry, file string, frame *capture.Frame, decode bool) error {
	payload := hex.EncodeToString(frame.Payload)
	if decode {
		if c, err := reg.ResolveName(frame.Name); err == nil {
			if value, err := c.DecodeValue(wire.FromBytes(frame.Payload)); err == nil {
				payload = fmt.Sprintf("%+v", value)
			}
		}
	}

	_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
		file, frame.Offset, frame.Timestamp.UTC().Format(time.RFC3339Nano), frame.Name, len(frame.Payload), payload)
	return err
}
