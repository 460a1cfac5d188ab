// Command porobase is a small operator console for a porolink data
// store: insert and query documents, follow realtime changes, register
// accounts and move parcels through their lifecycle, all against a
// snapshot-backed local store.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
