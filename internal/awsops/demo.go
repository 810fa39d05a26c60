package awsops

import (
	"fmt"
	"io"
	"strings"
)

// Banner prints a step separator in the demo binaries.
func Banner(w io.Writer, title string) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, line)
}
