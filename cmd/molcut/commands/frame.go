package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rawbytedev/molecule/pkg/frame"
)

func newFrameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Wrap buffers in, or unwrap them from, a checksummed frame",
	}

	var zstd bool
	encode := &cobra.Command{
		Use:   "encode [FILE]",
		Short: "Frame a buffer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readRaw(cmd, args)
			if err != nil {
				return err
			}
			var flags frame.Flags
			if zstd {
				flags |= frame.FlagZstd
			}
			out, err := frame.Encode(data, flags)
			if err != nil {
				return err
			}
			a.log.Debug("frame encoded", zap.Int("payload", len(data)), zap.Int("frame", len(out)))
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	encode.Flags().BoolVar(&zstd, "zstd", false, "Compress the payload with zstd")

	decode := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Check a frame and write its payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readRaw(cmd, args)
			if err != nil {
				return err
			}
			payload, _, err := frame.Decode(data)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(payload)
			return err
		},
	}

	cmd.AddCommand(encode, decode)
	return cmd
}
