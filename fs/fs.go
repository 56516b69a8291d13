// Package appfs exposes the embedded migration scripts and email templates.
package appfs

import "embed"

//go:embed migrations templates
var FS embed.FS
