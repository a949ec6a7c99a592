// Package web holds the static chat frontend.
package web

import "embed"

//go:embed index.html
var Files embed.FS
