package commands

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/molecule/pkg/schema"
)

var errNoSchema = errors.New("no schema given (use --schema or MOLCUT_SCHEMA)")

func (a *app) loadSchema() (*schema.Schema, error) {
	if a.cfg.Schema == "" {
		return nil, errNoSchema
	}
	s, err := schema.Load(a.cfg.Schema)
	if err != nil {
		return nil, err
	}
	s.Engine = a.engine()
	return s, nil
}

func newGetCmd(a *app) *cobra.Command {
	var (
		typ  string
		path string
		raw  bool
	)
	cmd := &cobra.Command{
		Use:   "get [FILE]",
		Short: "Navigate a buffer along a path of field names and indices",
		Example: `  molcut get --schema people.yaml --type Person --path tags.0 person.bin
  molcut get --schema people.yaml --type Shape --path Person.name --raw shape.bin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			buf, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := s.Navigate(buf, typ, path)
			if err != nil {
				return err
			}
			payload, err := v.Payload()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if raw {
				_, err = w.Write(payload)
				return err
			}
			fmt.Fprintf(w, "type: %s (%s)\n", v.Type.Name, v.Type.Kind)
			fmt.Fprintf(w, "attr: %d\n", v.Attr)
			fmt.Fprintf(w, "size: %d\n", len(v.Seg))
			fmt.Fprintf(w, "segment: %s\n", hex.EncodeToString(v.Seg))
			if v.Type.Kind == schema.KindBytes {
				fmt.Fprintf(w, "payload: %q\n", payload)
			}
			return nil
		},
	}
	cmd.Flags().String("schema", "", "Schema file")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Root type name")
	cmd.Flags().StringVarP(&path, "path", "p", "", "Dot separated path, e.g. people.2.name")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write the value bytes instead of a report")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "verify [FILE]",
		Short: "Check a buffer and everything nested in it against a schema type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			buf, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}
			if err := s.Verify(buf, typ); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", typ)
			return nil
		},
	}
	cmd.Flags().String("schema", "", "Schema file")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Root type name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
