// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package main

import (
	"github.com/DominiqueFouchez/ip-diffim/internal/cliapp"
)

func main() {
	cliapp.Execute()
}
