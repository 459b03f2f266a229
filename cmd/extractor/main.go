// Command extractor parses Singapore bank statements into categorized
// transactions.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
