// Command larder inspects and manages files stored through larder adapters.
package main

import "github.com/mesh-intelligence/larder/internal/cli"

func main() {
	cli.Execute()
}
