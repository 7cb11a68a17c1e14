// Command synctemplate renders stored layout templates with per-instance
// overrides, lists their dynamic fields and serves both over HTTP.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
