// Command ghost is the os-ghost CLI: it starts the long-running
// companion process (ghost run) and, separately, talks to an already
// running process's status API as a thin client (ghost status/execute/
// approve/deny/workflows).
package main

import "os"

func main() {
	os.Exit(Execute())
}
