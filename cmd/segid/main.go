// Command segid issues ids and inspects counters from the command line.
//
// Usage:
//
//	segid next --code orders --count 5
//	segid peek --code orders
//	SEGID_STORE=bolt SEGID_BOLT_PATH=/var/lib/segid.db segid next --code orders
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
