// Command harvest is the farm management CLI.
package main

import "github.com/mesh-intelligence/harvest/internal/cli"

func main() {
	cli.Execute()
}
