// SPDX-License-Identifier: MIT
//
// Pelorus - AI2 GNSS Receiver Monitor
//
// A CLI tool for monitoring and driving GNSS receivers speaking the AI2
// framed serial protocol.

package main

import (
	"os"

	"github.com/pelorus-nav/pelorus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
