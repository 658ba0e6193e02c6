// Command cloak masks values and bodies from the command line.
//
//	cloak strategies
//	cloak apply PHONE 13812345678
//	echo '{"phone":"13812345678"}' | cloak body
//	cloak config validate cloak.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
