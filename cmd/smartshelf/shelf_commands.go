package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
	"smartshelf/internal/hardware"
	"smartshelf/internal/shelves"
)

func newShelfCommand(ctx *commandContext) *cobra.Command {
	shelfCmd := &cobra.Command{
		Use:   "shelf",
		Short: "Manage and open shelves",
	}
	shelfCmd.AddCommand(newShelfListCommand(ctx))
	shelfCmd.AddCommand(newShelfAddCommand(ctx))
	shelfCmd.AddCommand(newShelfOpenCommand(ctx))
	shelfCmd.AddCommand(newShelfDocumentsCommand(ctx))
	return shelfCmd
}

func newShelfListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered shelves",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				list, err := store.ListShelves(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, list)
				}
				rows := make([][]string, 0, len(list))
				for _, shelf := range list {
					rows = append(rows, []string{
						strconv.FormatInt(shelf.ID, 10),
						shelf.Name,
						optionalInt(shelf.GPIOPin),
						optionalInt64(shelf.CabinetID),
						optionalInt64(shelf.RoomID),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "GPIO", "Cabinet", "Room"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func newShelfAddCommand(ctx *commandContext) *cobra.Command {
	var pin int
	var cabinet, room int64

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("shelf name is required")
			}
			input := catalog.NewShelf{Name: name}
			if cmd.Flags().Changed("pin") {
				if pin < 0 {
					return fmt.Errorf("invalid GPIO pin %d", pin)
				}
				input.GPIOPin = &pin
			}
			if cmd.Flags().Changed("cabinet") {
				input.CabinetID = &cabinet
			}
			if cmd.Flags().Changed("room") {
				input.RoomID = &room
			}
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				shelf, err := store.CreateShelf(cmd.Context(), input)
				if err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, shelf)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shelf %d %q registered (GPIO %s)\n", shelf.ID, shelf.Name, optionalInt(shelf.GPIOPin))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&pin, "pin", 0, "BCM GPIO pin driving the shelf relay")
	cmd.Flags().Int64Var(&cabinet, "cabinet", 0, "Cabinet the shelf belongs to")
	cmd.Flags().Int64Var(&room, "room", 0, "Room the shelf belongs to")
	return cmd
}

func newShelfOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id|name>",
		Short: "Pulse a shelf relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.cliLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				driver, err := hardware.Select(cfg, logger)
				if err != nil {
					return err
				}
				trigger := hardware.NewSerialized(driver, hardware.NewPinLocker(cfg.Paths.LockDir))
				defer trigger.Close()

				result, openErr := shelves.NewOpener(store, trigger, logger).Open(cmd.Context(), args[0])
				if openErr != nil && result.ShelfID == 0 {
					return openErr
				}
				if ctx.wantJSON(cmd) {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Shelf %d GPIO %d triggered: %s (%s)\n",
						result.ShelfID, result.GPIOPin, yesNo(result.Triggered), result.Message)
				}
				return openErr
			})
		},
	}
}

func newShelfDocumentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "documents <id|name>",
		Short: "List documents stored on a shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				shelf, err := store.ResolveShelf(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if shelf == nil {
					return &shelves.NotFoundError{Identifier: args[0]}
				}
				docs, err := store.DocumentsByShelf(cmd.Context(), shelf.ID)
				if err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, docs)
				}
				rows := make([][]string, 0, len(docs))
				for _, doc := range docs {
					rows = append(rows, []string{
						strconv.FormatInt(doc.ID, 10),
						doc.Reference,
						doc.Name,
						doc.Status,
						doc.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shelf %d %q\n", shelf.ID, shelf.Name)
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Reference", "Name", "Status", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
