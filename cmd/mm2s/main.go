// Package main provides the mm2s command that simulates a single
// memory-to-stream transfer.
package main

func main() {
	Execute()
}
