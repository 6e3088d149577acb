// Package main hosts the Shapes CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into capture
// bridge calls, library store mutations, preview rendering, deck maintenance,
// and configuration scaffolding. It centralizes configuration resolution,
// library wiring, and structured logging setup so subcommands can focus on
// user experience instead of plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// reusable library components.
package main
