package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rawbytedev/molecule"
)

type cutFlags struct {
	kind       string
	count      uint32
	size       uint32
	index      uint32
	offset     uint32
	total      uint32
	fields     uint32
	compatible bool
	raw        bool
}

func (f *cutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.kind, "kind", "k", "", "Layout kind (option|union|array|struct|fixvec|dynvec|table)")
	fs.Uint32Var(&f.count, "count", 0, "Array item count")
	fs.Uint32Var(&f.size, "size", 0, "Item size for array and fixvec, field size for struct")
	fs.Uint32VarP(&f.index, "index", "i", 0, "Item or field index")
	fs.Uint32Var(&f.offset, "offset", 0, "Struct field offset")
	fs.Uint32Var(&f.total, "total", 0, "Struct total size")
	fs.Uint32Var(&f.fields, "fields", 0, "Table field count")
	fs.BoolVar(&f.compatible, "compatible", false, "Accept tables with extra fields")
	_ = cmd.MarkFlagRequired("kind")
}

func (f *cutFlags) layout() (molecule.Layout, error) {
	kind, err := molecule.ParseKind(f.kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case molecule.KindOption:
		return molecule.Option{}, nil
	case molecule.KindUnion:
		return molecule.Union{}, nil
	case molecule.KindArray:
		return molecule.Array{ItemCount: f.count, ItemSize: f.size, Index: f.index}, nil
	case molecule.KindStruct:
		return molecule.Struct{TotalSize: f.total, FieldOffset: f.offset, FieldSize: f.size}, nil
	case molecule.KindFixVec:
		return molecule.FixVec{ItemSize: f.size, Index: f.index}, nil
	case molecule.KindDynVec:
		return molecule.DynVec{Index: f.index}, nil
	case molecule.KindTable:
		return molecule.Table{FieldCount: f.fields, Index: f.index, Compatible: f.compatible}, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

func newCutCmd(a *app) *cobra.Command {
	var f cutFlags
	cmd := &cobra.Command{
		Use:   "cut [FILE]",
		Short: "Cut one child segment out of a buffer",
		Example: `  molcut cut --kind table --fields 3 --index 1 person.bin
  echo 0c000000 08000000 aabbccdd | molcut cut --hex -k dynvec -i 0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := f.layout()
			if err != nil {
				return err
			}
			parent, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}
			res := a.engine().Cut(parent, l)
			a.log.Debug("cut",
				zap.Stringer("kind", l.Kind()),
				zap.Stringer("status", res.Status),
				zap.Uint32("attr", res.Attr))
			return emit(cmd, res, f.raw)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Write the segment bytes instead of a report")
	return cmd
}

func newBytesCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "bytes [FILE]",
		Short: "Extract the payload of a length-prefixed byte string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}
			return emit(cmd, a.engine().CutBytes(parent), raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Write the payload bytes instead of a report")
	return cmd
}

// emit writes a successful result and turns a failed one into the
// command error.
func emit(cmd *cobra.Command, res molecule.Result, raw bool) error {
	if !res.OK() {
		return fmt.Errorf("status 0x%02x: %w", uint8(res.Status), res.Err())
	}
	if raw {
		_, err := cmd.OutOrStdout().Write(res.Segment)
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}
