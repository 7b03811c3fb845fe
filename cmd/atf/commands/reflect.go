package commands

import (
	"encoding/json"
	"fmt"

	reflectcat "github.com/atfkit/atf/pkg/reflect"
	"github.com/atfkit/atf/pkg/server"
	"github.com/invopop/jsonschema"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var reflectCatalogueFile string

var reflectCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Inspect the reflection catalogue",
}

var reflectFunctionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Tabular dump of the catalogue's function descriptors",
	RunE:  runReflectFunctions,
}

var reflectTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "Tabular dump of the catalogue's type-node graph",
	RunE:  runReflectTypes,
}

var reflectSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Emit a JSON Schema for the wire request/response envelope",
	RunE:  runReflectSchema,
}

func init() {
	reflectCmd.PersistentFlags().StringVar(&reflectCatalogueFile, "catalogue", "", "Path to a serialized reflection catalogue (default: built-in demo catalogue)")
	reflectCmd.AddCommand(reflectFunctionsCmd)
	reflectCmd.AddCommand(reflectTypesCmd)
	reflectCmd.AddCommand(reflectSchemaCmd)
}

func runReflectFunctions(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogue(reflectCatalogueFile)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Name", "Address", "Static", "Method"})
	cat.EachFunc(func(fn reflectcat.FuncInfo) bool {
		table.Append([]string{
			fmt.Sprintf("%d", fn.InternalID),
			fn.Name,
			fmt.Sprintf("%#x", fn.Address),
			fmt.Sprintf("%v", fn.IsStatic),
			fmt.Sprintf("%v", fn.IsMethod),
		})
		return true
	})
	table.Render()
	return nil
}

func runReflectTypes(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogue(reflectCatalogueFile)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Kind", "Name", "Size"})
	cat.EachNode(func(n reflectcat.TypeNode) bool {
		table.Append([]string{
			fmt.Sprintf("%d", n.ID),
			n.Kind.String(),
			n.Name,
			fmt.Sprintf("%d", n.Size),
		})
		return true
	})
	table.Render()
	return nil
}

func runReflectSchema(cmd *cobra.Command, args []string) error {
	r := &jsonschema.Reflector{}
	reqSchema := r.Reflect(&server.Request{})
	respSchema := r.Reflect(&server.Response{})

	envelope := map[string]any{
		"request":  reqSchema,
		"response": respSchema,
	}

	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
