// Package configs provides embedded templates used by `component-forge init`.
//
// Templates are embedded at build time with //go:embed so they ship in every
// distribution, including `go install` builds. To change a template, edit the
// file in this directory and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the starter configuration written by `component-forge init`
// as component-forge.yaml. Every value matches the built-in defaults, so the
// generated file is safe to commit as-is and prune down later.
//
//go:embed component-forge.example.yaml
var ConfigTemplate string

// StarterLibrary is a minimal pattern library written by
// `component-forge init --with-patterns`. It exists so a fresh checkout can
// run `component-forge search button` before any real curation happens.
//
//go:embed patterns.example.json
var StarterLibrary string
