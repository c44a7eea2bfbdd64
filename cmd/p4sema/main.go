// Command p4sema runs the P4 semantic pipeline over a single source
// file and reports the first diagnostic, or a summary of the output
// maps, the way spec §6 describes.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
