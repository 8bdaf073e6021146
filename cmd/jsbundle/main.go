// Command jsbundle is the CLI front end for the bundler core in pkg/api.
// It owns argument parsing, config-file merging and output-file writing -
// the collaborators the core pipeline treats as external (see pkg/api and
// internal/bundler).
package main

import "module-bundler/cmd/jsbundle/cmd"

func main() {
	cmd.Execute()
}
