// Command streakr tracks daily task streaks in the terminal.
package main

import "github.com/sadopc/streakr/internal/cli"

func main() {
	cli.Execute()
}
