// Command manage runs account administration tasks against the database.
package main

import (
	"os"

	"github.com/athujoshi24/legendary-panel/internal/manage"
)

func main() {
	if err := manage.Execute(); err != nil {
		os.Exit(1)
	}
}
