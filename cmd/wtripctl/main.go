// The wtripctl command provides a command-line interface for managing
// the trips of a Wrale Trips backend.
package main

import "github.com/wrale/wrale-trips/internal/wtripctl/cmd"

func main() {
	cmd.Execute()
}
