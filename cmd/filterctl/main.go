// Command filterctl checks text against a filter ruleset without running the bot.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
