// Command fictc is the AOT compiler entry point for the fict reactive
// framework: parses $state/$effect/derived-const JSX/TSX modules and
// emits fict-runtime calls.
package main

import "github.com/oskari/fictc/internal/cli"

func main() {
	cli.Execute()
}
