// Package main hosts the ocwsync CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the catalog sync,
// course download and problem extraction workflows, plus read-only views of
// the store and a preflight check. It centralizes configuration resolution,
// store access and run logging so subcommands stay declarative.
package main
