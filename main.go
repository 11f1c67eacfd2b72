// ABOUTME: Entry point for the spark-sizing CLI and API server
// ABOUTME: Recommends Spark executor settings for CPU and GPU worker nodes

package main

import (
	"os"

	"github.com/markalston/spark-sizing-advisor/cmd"
)

func main() {
	// cobra has already printed flag and argument errors
	if err := cmd.Execute(); err != nil {
		os.Exit(2)
	}
}
