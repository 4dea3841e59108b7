package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/shoplist/internal/shopping"
	"github.com/Makepad-fr/shoplist/internal/tui"
	"github.com/Makepad-fr/shoplist/internal/ui"
)

// -------------- subcommands ----------------

func newAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Add an item (name can be multiple words)",
		Example: `  shoplist add Milk
  shoplist add "Rye bread"`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.list.Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return opError("add", err)
			}
			return s.out.Success(fmt.Sprintf("added %q", it.Name), it)
		},
	}
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items, newest first",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			items := s.list.Items()
			if s.out.JSON() {
				return s.out.Success("", items)
			}
			ui.Panel(cmd.OutOrStdout(), ui.ListPanel(items, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by to-buy/bought")
	return cmd
}

// targetFlag binds --id and turns the <n> argument into a controller target.
type targetFlag struct {
	byID bool
}

func (f *targetFlag) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.byID, "id", false, "treat <n> as an item id instead of a position")
}

func (f *targetFlag) parse(arg string) (shopping.Target, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return shopping.Target{}, NewExitError(ExitCommandError, "not a number: "+arg)
	}
	if f.byID {
		return shopping.ByID(n), nil
	}
	return shopping.At(int(n) - 1), nil
}

func newToggleCommand(opts *RootOptions) *cobra.Command {
	var tf targetFlag
	cmd := &cobra.Command{
		Use:     "toggle <n>",
		Aliases: []string{"done"},
		Short:   "Toggle bought for the item at 1-based position n",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := tf.parse(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.list.Toggle(cmd.Context(), target)
			if err != nil {
				return opError("toggle", err)
			}
			state := "to buy"
			if it.IsBought {
				state = "bought"
			}
			return s.out.Success(fmt.Sprintf("%s: %s", it.Name, state), it)
		},
	}
	tf.bind(cmd)
	return cmd
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	var tf targetFlag
	cmd := &cobra.Command{
		Use:   "edit <n> <name...>",
		Short: "Rename the item at 1-based position n",
		Args:  usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := tf.parse(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.list.Edit(cmd.Context(), target, strings.Join(args[1:], " "))
			if err != nil {
				return opError("edit", err)
			}
			return s.out.Success(fmt.Sprintf("renamed to %q", it.Name), it)
		},
	}
	tf.bind(cmd)
	return cmd
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	var tf targetFlag
	cmd := &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"delete"},
		Short:   "Remove the item at 1-based position n",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := tf.parse(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.list.Delete(cmd.Context(), target)
			if err != nil {
				return opError("rm", err)
			}
			return s.out.Success(fmt.Sprintf("removed %q", it.Name), it)
		},
	}
	tf.bind(cmd)
	return cmd
}

func newTUICommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := tui.Run(cmd.Context(), s.list); err != nil {
				return WrapExitError(ExitFailure, "tui", err)
			}
			return nil
		},
	}
}
