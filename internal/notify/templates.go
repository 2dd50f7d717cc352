package notify

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

// Templates returns the digest email templates, rooted so that
// mailer.NewRenderer finds templates at the top level and layouts under
// layouts/.
func Templates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
