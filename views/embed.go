package views

import "embed"

// FS holds the page templates. Layouts live under layouts/.
//
//go:embed *.html layouts/*.html
var FS embed.FS
