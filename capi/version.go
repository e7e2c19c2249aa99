// Command capi is the C ABI entry point the external interfaces section
// requires: a single NUL-terminated version string, exported for host
// bindings generated outside this repo (build with -buildmode=c-shared).
package main

/*
#include <stdlib.h>
*/
import "C"

import "waveprint"

//export WaveprintVersion
func WaveprintVersion() *C.char {
	return C.CString(waveprint.Version)
}

func main() {}
