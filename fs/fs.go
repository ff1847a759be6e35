// Package appfs bundles the files shipped inside the binaries: migrations, email templates and images.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/* assets
var FS embed.FS
