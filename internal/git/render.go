package git

import (
	"fmt"
	"io"
)

// WriteStatus renders the status the way `git status` does for a single
// branch that is in sync with its remote.
func WriteStatus(w io.Writer, s Status) {
	fmt.Fprintln(w, "On branch main")
	fmt.Fprintln(w, "Your branch is up to date with 'origin/main'.")

	if s.IsClean() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "nothing to commit, working tree clean")
		return
	}

	if len(s.Staged) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Changes to be committed:")
		for _, p := range s.Staged {
			fmt.Fprintf(w, "\tmodified:   %s\n", p)
		}
	}

	if len(s.Modified) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Changes not staged for commit:")
		fmt.Fprintln(w, `  (use "git add <file>..." to update what will be committed)`)
		for _, p := range s.Modified {
			fmt.Fprintf(w, "\tmodified:   %s\n", p)
		}
	}
}

// WriteLog renders the head commit the way `git log -1` does
func WriteLog(w io.Writer, s Status) {
	if s.Head == nil {
		fmt.Fprintln(w, "fatal: your current branch 'main' does not have any commits yet")
		return
	}

	fmt.Fprintf(w, "commit %s (HEAD -> main)\n", s.Head.Hash)
	fmt.Fprintf(w, "Author: %s\n", s.Head.Author)
	fmt.Fprintf(w, "Date:   %s\n", s.Head.Date.Format("Mon Jan 2 15:04:05 2006 -0700"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %s\n", s.Head.Message)
}
