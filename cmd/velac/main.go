// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"vela/internal/diagnostics"
	"vela/internal/ir"
	"vela/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: velac <module.json>")
		os.Exit(1)
	}

	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	mod, err := ir.UnmarshalFixture(data)
	if err != nil {
		color.Red("failed to parse %s: %s", path, err)
		os.Exit(1)
	}

	res := pipeline.New(pipeline.Options{Sink: os.Stdout}).Run(mod)
	if len(res.Diagnostics) > 0 {
		reportDiagnostics(res.Diagnostics)
		os.Exit(1)
	}

	color.Green("✅ %s: %d function(s) processed", path, len(mod.Functions))
}

// reportDiagnostics prints every diagnostic the pipeline rejected mod for,
// Rust-compiler-style, via the shared Reporter.
func reportDiagnostics(diags []diagnostics.Diagnostic) {
	r := diagnostics.NewReporter()
	for _, d := range diags {
		fmt.Print(r.Format(d))
	}
}
