// Package templates renders the HTML pages served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// UploadPage renders a form that posts a CSV file to the upload endpoint and
// a button that triggers the bundled import.
func UploadPage(maxFileSize int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, uploadPageHTML, templ.EscapeString(humanSize(maxFileSize)))
		return err
	})
}

// ErrorAlert renders a short error notice with a support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong> %s <code>%s</code></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

const uploadPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Employee import</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 3rem auto; }
fieldset { margin-bottom: 1.5rem; }
</style>
</head>
<body>
<h1>Employee import</h1>
<fieldset>
<legend>Upload a CSV file</legend>
<p>Columns: First name, Last name, Location, Birthday. Maximum size %s.</p>
<form method="post" action="/employees/upload-from-file" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,text/csv" required>
<button type="submit">Upload</button>
</form>
</fieldset>
<fieldset>
<legend>Bundled data</legend>
<form method="post" action="/employees/import-from-resources">
<button type="submit">Import bundled employees</button>
</form>
</fieldset>
</body>
</html>
`
