package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/heshanpadmasiri/nunitMSTest/diagnostics"
	"github.com/heshanpadmasiri/nunitMSTest/workspace"
)

func TestReport(t *testing.T) {
	color.NoColor = true

	results := []workspace.FileResult{
		{Path: "a/FooTests.cs", Changed: true},
		{Path: "a/Helpers.cs", Skipped: true},
		{
			Path:    "a/BarTests.cs",
			Changed: true,
			Diagnostics: []diagnostics.Unsupported{{
				Info:     "Attribute is not supported",
				Location: diagnostics.Location{File: "a/BarTests.cs", Line: 7, Column: 6},
				NodeText: "Order(1)",
			}},
		},
		{Path: "a/Broken.cs", Err: errors.New("boom")},
	}

	var out bytes.Buffer
	unsupported := newReporter(&out).report(results)

	assert.Equal(t, 1, unsupported)
	assert.Equal(t, `Processed a/FooTests.cs
Skipped a/Helpers.cs
Processed a/BarTests.cs
a/BarTests.cs: Attribute is not supported at [7:6] for Order(1)
Failed a/Broken.cs: boom
Changed 2 documents
`, out.String())
}

func TestFinishStrict(t *testing.T) {
	color.NoColor = true
	results := []workspace.FileResult{{
		Path:        "FooTests.cs",
		Diagnostics: []diagnostics.Unsupported{{Info: "Unsupported assertion expression"}},
	}}

	var out bytes.Buffer
	lenient := &run{out: &out}
	assert.NoError(t, finish(lenient, results, newReporter(&out)))

	strict := &run{config: config{Strict: true}, out: &out}
	assert.EqualError(t, finish(strict, results, newReporter(&out)), "1 constructs could not be migrated")
}
