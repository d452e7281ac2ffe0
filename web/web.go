// Package web holds the embedded viewer page. The page is presentation
// glue only: it consumes the JSON endpoints and keeps no state of its own
// beyond the browser session.
package web

import (
	_ "embed"
)

//go:embed index.html
var Index []byte
