// Command achievementctl records and lists student achievements.
package main

import "github.com/Lllllllleong/achievementflow/internal/cli"

func main() {
	cli.Execute()
}
