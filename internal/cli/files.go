package cli

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/highlight"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

// NewAddCommand creates the add command
func NewAddCommand(app *App) *cobra.Command {
	var folder, parents bool

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Create a file or folder",
		Long: `Creates a file (opened and made active) or, with --folder, a folder.

The parent folder must exist unless --parents is given.`,
		Example: `  codebuilder add src/App.jsx
  codebuilder add --folder components
  codebuilder add -p src/lib/util.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			kind := models.NodeFile
			if folder {
				kind = models.NodeFolder
			}

			created, err := addPath(store, strings.Trim(args[0], "/"), kind, parents)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", kind, created)
			return nil
		},
	}

	cmd.Flags().BoolVar(&folder, "folder", false, "Create a folder instead of a file")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "Create missing parent folders")

	return cmd
}

// addPath creates p, optionally creating its missing ancestors with it
func addPath(store *workspace.Store, p string, kind models.NodeKind, parents bool) (string, error) {
	if parents {
		return p, store.AddPath(p, kind)
	}
	dir, name := path.Split(p)
	return store.AddEntry(strings.TrimSuffix(dir, "/"), name, kind)
}

// NewRemoveCommand creates the rm command
func NewRemoveCommand(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <path>",
		Aliases: []string{"delete"},
		Short:   "Delete a file or folder with everything below it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			p := strings.Trim(args[0], "/")
			node := store.Snapshot().Tree.Find(p)
			if node == nil {
				return models.NewError(models.KindNotFound, p, "no such file or folder")
			}

			if app.Interactive && !yes {
				files := filesUnder(store.Snapshot(), node)
				ok, err := app.Prompter.ConfirmDelete(p, files)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			removed := store.DeleteEntry(p)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d file(s))\n", p, len(removed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// filesUnder lists the files that deleting node would remove
func filesUnder(snap workspace.Snapshot, node *models.Node) []string {
	if !node.IsFolder() {
		return []string{node.Path}
	}
	var files []string
	for _, p := range snap.Tree.FilePaths() {
		if strings.HasPrefix(p, node.Path+"/") {
			files = append(files, p)
		}
	}
	return files
}

// NewWriteCommand creates the write command
func NewWriteCommand(app *App) *cobra.Command {
	var content string
	var create bool

	cmd := &cobra.Command{
		Use:   "write <path>",
		Short: "Replace the content of a file",
		Long: `Replaces the content of a file with --content or standard input and marks
it modified.`,
		Example: `  echo 'console.log(1)' | codebuilder write src/index.js
  codebuilder write --create notes.md --content "# Notes"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			p := strings.Trim(args[0], "/")
			if !cmd.Flags().Changed("content") {
				data, err := io.ReadAll(app.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				content = string(data)
			}

			if create {
				if _, err := store.PutFile(p, content); err != nil {
					return err
				}
			} else {
				if !store.Snapshot().Tree.IsFile(p) {
					return models.NewError(models.KindNotFound, p, "file not found")
				}
				store.UpdateContent(p, content)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", p, len(content))
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Content to write instead of standard input")
	cmd.Flags().BoolVar(&create, "create", false, "Create the file and its folders when missing")

	return cmd
}

// NewEditCommand creates the edit command
func NewEditCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [path]",
		Short: "Edit a file in the terminal editor",
		Long:  `Opens the file (default: the active file) in a full screen editor. ctrl+s saves, esc discards.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			p, content, err := fileArg(store.Snapshot(), args)
			if err != nil {
				return err
			}
			if !app.Interactive {
				return fmt.Errorf("edit needs a terminal; use write to replace %s", p)
			}
			if err := store.OpenFile(p); err != nil {
				return err
			}

			edited, saved, err := app.Edit(p, content)
			if err != nil {
				return err
			}
			if !saved || edited == content {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes")
				return nil
			}

			store.UpdateContent(p, edited)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", p)
			return nil
		},
	}
}

// fileArg resolves an optional path argument to a file, defaulting to the
// active file
func fileArg(snap workspace.Snapshot, args []string) (string, string, error) {
	if len(args) == 0 {
		p, content, ok := snap.ActiveFile()
		if !ok {
			return "", "", models.NewError(models.KindNoActiveFile, "", "Please select a file first")
		}
		return p, content, nil
	}

	p := strings.Trim(args[0], "/")
	content, ok := snap.Content(p)
	if !ok {
		return "", "", models.NewError(models.KindNotFound, p, "file not found")
	}
	return p, content, nil
}

// NewOpenCommand creates the open command
func NewOpenCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a file in a tab and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			if err := store.OpenFile(strings.Trim(args[0], "/")); err != nil {
				return err
			}
			writeTabs(cmd.OutOrStdout(), store.Snapshot())
			return nil
		},
	}
}

// NewCloseCommand creates the close command
func NewCloseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close [path]",
		Short: "Close a tab (default: the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			p := store.Snapshot().ActivePath()
			if len(args) == 1 {
				p = strings.Trim(args[0], "/")
			}
			if p == "" {
				return models.NewError(models.KindNoActiveFile, "", "No file is open")
			}

			store.CloseFile(p)
			writeTabs(cmd.OutOrStdout(), store.Snapshot())
			return nil
		},
	}
}

// NewTabsCommand creates the tabs command
func NewTabsCommand(app *App) *cobra.Command {
	var active string

	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "List open tabs, marking the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			if active != "" {
				if err := store.SetActive(strings.Trim(active, "/")); err != nil {
					return err
				}
			}
			writeTabs(cmd.OutOrStdout(), store.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&active, "activate", "", "Make an open tab active")

	return cmd
}

func writeTabs(w io.Writer, snap workspace.Snapshot) {
	paths := snap.Ring.Paths()
	if len(paths) == 0 {
		fmt.Fprintln(w, "No open files")
		return
	}
	active := snap.ActivePath()
	for _, p := range paths {
		marker := " "
		if p == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, p)
	}
}

// NewCatCommand creates the cat command
func NewCatCommand(app *App) *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "cat [path]",
		Short: "Print a file (default: the active file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			p, content, err := fileArg(store.Snapshot(), args)
			if err != nil {
				return err
			}

			if color || (app.Color && !cmd.Flags().Changed("color")) {
				return highlight.Write(cmd.OutOrStdout(), p, content)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().BoolVar(&color, "color", false, "Syntax highlight the output")

	return cmd
}

// NewTreeCommand creates the tree command
func NewTreeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "tree",
		Aliases: []string{"ls"},
		Short:   "Show the file tree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			return store.Snapshot().Tree.Render(cmd.OutOrStdout())
		},
	}
}

// NewFilesCommand creates the files command
func NewFilesCommand(app *App) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List every file by name and path",
		Long:  `Lists every file in tree order, the way the command palette offers them.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			needle := strings.ToLower(filter)
			for _, f := range store.Snapshot().Files() {
				if needle != "" && !strings.Contains(strings.ToLower(f.Path), needle) {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", f.Name, f.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only list paths containing this text (case-insensitive)")

	return cmd
}
