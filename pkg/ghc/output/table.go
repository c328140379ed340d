package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ghcdesk/ghc/pkg/ghc/auth"
	"github.com/ghcdesk/ghc/pkg/ghc/token"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

// WriteStatusTable prints token presence. source names where the token
// came from and is shown as-is.
func WriteStatusTable(w io.Writer, st token.Status, source string) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "LOGGED_IN\tTOKEN\tSOURCE")
	tail := "-"
	if st.Tail != nil {
		tail = "***" + *st.Tail
	}
	if !st.HasToken {
		source = "-"
	}
	_, _ = fmt.Fprintf(tw, "%t\t%s\t%s\n", st.HasToken, tail, source)
	_ = tw.Flush()
}

// WriteLoginStart prints the instructions for approving a device login.
func WriteLoginStart(w io.Writer, start *auth.DeviceLoginStart) {
	_, _ = fmt.Fprintf(w, "Open %s and enter the code: %s\n", start.AuthURL, start.UserCode)
	_, _ = fmt.Fprintf(w, "The code expires in %s. Waiting for approval...\n", formatSeconds(start.ExpiresIn))
}

func formatSeconds(s int) string {
	if s <= 0 {
		return "-"
	}
	if s%60 == 0 {
		return fmt.Sprintf("%dm", s/60)
	}
	if s > 60 {
		return fmt.Sprintf("%dm%ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}
