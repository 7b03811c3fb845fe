package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atfkit/atf/pkg/hook"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	hooksCatalogueFile string
	hooksAttach        []string
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Inspect and exercise HookCore",
}

var hooksInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Attach any --attach handlers and dump the resulting HookView attach table",
	Long: `Builds a HookRoot over the reflection catalogue, attaches every
handler named by --attach (format funcID:mode:handlerAddr, mode one of
before/hook/after), and renders HookView.InfoText() as a table.

Since HookCore's live state is process-local, this command demonstrates and
exercises attach/detach/InfoText in a single invocation rather than
inspecting an already-running "atf start" process.`,
	RunE: runHooksInfo,
}

func init() {
	hooksCmd.PersistentFlags().StringVar(&hooksCatalogueFile, "catalogue", "", "Path to a serialized reflection catalogue (default: built-in demo catalogue)")
	hooksInfoCmd.Flags().StringArrayVar(&hooksAttach, "attach", nil, "funcID:mode:handlerAddr, repeatable (mode: before|hook|after)")
	hooksCmd.AddCommand(hooksInfoCmd)
}

func parseHookMode(s string) (hook.HookMode, error) {
	switch strings.ToLower(s) {
	case "before", "obs-before", "observer-before":
		return hook.ObserverBefore, nil
	case "hook":
		return hook.Hook, nil
	case "after", "obs-after", "observer-after":
		return hook.ObserverAfter, nil
	default:
		return 0, fmt.Errorf("unknown hook mode %q (want before|hook|after)", s)
	}
}

func parseAttachSpec(spec string) (funcID uint32, mode hook.HookMode, handlerAddr uint64, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid --attach %q (want funcID:mode:handlerAddr)", spec)
	}

	id, err := strconv.ParseUint(parts[0], 0, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid funcID in %q: %w", spec, err)
	}
	mode, err = parseHookMode(parts[1])
	if err != nil {
		return 0, 0, 0, err
	}
	addr, err := strconv.ParseUint(parts[2], 0, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid handlerAddr in %q: %w", spec, err)
	}
	return uint32(id), mode, addr, nil
}

func runHooksInfo(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogue(hooksCatalogueFile)
	if err != nil {
		return err
	}

	root := hook.NewHookRoot(cat, nil)
	root.SetInstaller(stubInstaller)

	for _, spec := range hooksAttach {
		funcID, mode, handlerAddr, err := parseAttachSpec(spec)
		if err != nil {
			return err
		}
		if state, _ := root.Attach(funcID, mode, handlerAddr); state != hook.Done {
			fmt.Fprintf(cmd.ErrOrStderr(), "attach %s failed: %s\n", spec, state)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), root.InfoText())

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Mode", "FuncID", "Func", "HandlerAddr", "Path"})
	for _, row := range root.Rows() {
		table.Append([]string{
			row.Mode.String(),
			fmt.Sprintf("%d", row.FuncID),
			row.FuncName,
			fmt.Sprintf("%#x", row.HandlerAddr),
			row.NamePath.String(),
		})
	}
	table.Render()

	return nil
}
