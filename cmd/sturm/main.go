// Command sturm computes eigenvalues and eigenfunctions of Sturm–Liouville
// problems by the shooting method.
//
//	sturm solve --n 3 --m 1 --plot modes.png
//	sturm scan --problem harmonic --from 0.5 --to 20 --samples 80
//	sturm config init sturm.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
