package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rawbytedev/molecule"
	"github.com/rawbytedev/molecule/pkg/frame"
)

// readRaw returns the bytes named by args, decoding hex text when --hex is
// set. No argument or "-" reads stdin.
func (a *app) readRaw(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		data []byte
		err  error
		src  = "-"
	)
	if len(args) > 0 {
		src = args[0]
	}
	if src == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if a.cfg.Hex {
		text := strings.Join(strings.Fields(string(data)), "")
		text = strings.TrimPrefix(text, "0x")
		if data, err = hex.DecodeString(text); err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
	}
	a.log.Debug("input read", zap.String("source", src), zap.Int("bytes", len(data)))
	return data, nil
}

// readInput is readRaw followed by frame decoding when --framed is set.
func (a *app) readInput(cmd *cobra.Command, args []string) (molecule.Segment, error) {
	data, err := a.readRaw(cmd, args)
	if err != nil {
		return nil, err
	}
	if a.cfg.Framed {
		var flags frame.Flags
		if data, flags, err = frame.Decode(data); err != nil {
			return nil, err
		}
		a.log.Debug("frame decoded", zap.Uint8("flags", uint8(flags)), zap.Int("payload", len(data)))
	}
	return molecule.NewSegment(data)
}

func printResult(w io.Writer, res molecule.Result) {
	fmt.Fprintf(w, "status: %s\n", statusText(res.Status))
	fmt.Fprintf(w, "attr: %d\n", res.Attr)
	fmt.Fprintf(w, "size: %d\n", len(res.Segment))
	fmt.Fprintf(w, "segment: %s\n", hex.EncodeToString(res.Segment))
}

// statusText shows the raw 8-bit code next to its meaning.
func statusText(s molecule.Status) string {
	return fmt.Sprintf("0x%02x (%s)", uint8(s), s)
}
