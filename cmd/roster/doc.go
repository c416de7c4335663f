// Package main hosts the roster CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the api service
// layer: student and course maintenance, audit listing, exports, theme
// switching, seed import, the local HTTP server and diagnostics. Config
// resolution, logging setup and store lifetime live in commandContext so
// subcommands only deal with flags and rendering.
package main
